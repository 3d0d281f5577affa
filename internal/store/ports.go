package store

import (
	"context"

	"kharcha/internal/core"
)

// Ports implemented by every expense backend.
type (
	// ExpenseWriter appends a new expense. Implementations assign the id,
	// force the pending status and place the record first.
	ExpenseWriter interface {
		Add(ctx context.Context, e core.NewExpense) (core.Expense, error)
	}

	// ExpenseLister returns a copy of every expense, newest first.
	ExpenseLister interface {
		All(ctx context.Context) ([]core.Expense, error)
	}

	CategoryReader interface {
		Categories(ctx context.Context) ([]core.Category, error)
	}

	Store interface {
		ExpenseWriter
		ExpenseLister
		CategoryReader
	}
)
