package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"kharcha/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is an expense store backed by a private in-memory SQLite
// database. Its contents live as long as the process.
type SQLiteRepository struct {
	db    *sql.DB
	newID func() string
}

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

func WithIDFunc(fn func() string) Option {
	return func(r *SQLiteRepository) { r.newID = fn }
}

// NewSQLiteRepository opens a fresh in-memory database, applies the schema and
// loads the given categories and records. seed is expected newest first.
func NewSQLiteRepository(ctx context.Context, cats []core.Category, seed []core.Expense, opts ...Option) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every connection to :memory: gets its own database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	repo := &SQLiteRepository{db: db, newID: core.NewID}
	for _, opt := range opts {
		opt(repo)
	}

	if err := repo.load(ctx, cats, seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("load seed data: %w", err)
	}
	return repo, nil
}

// NewSeededRepository loads the default categories and sample expenses.
func NewSeededRepository(ctx context.Context, opts ...Option) (*SQLiteRepository, error) {
	cats := core.DefaultCategories()
	return NewSQLiteRepository(ctx, cats, core.SeedExpenses(cats), opts...)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) load(ctx context.Context, cats []core.Category, seed []core.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, c := range cats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (position, id, name, color, icon) VALUES (?, ?, ?, ?, ?)`,
			i, c.ID, c.Name, c.Color, c.Icon); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}
	// Oldest first, so the highest seq is the newest record.
	for i := len(seed) - 1; i >= 0; i-- {
		if err := insertExpense(ctx, tx, seed[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertExpense(ctx context.Context, db execer, e core.Expense) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO expenses (id, title, amount_cents, category_id, category_name,
			category_color, category_icon, date, description, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Amount.Cents, e.Category.ID, e.Category.Name,
		e.Category.Color, e.Category.Icon, e.Date.String(), e.Description, string(e.Status))
	if err != nil {
		return fmt.Errorf("insert expense %s: %w", e.ID, err)
	}
	return nil
}

// Add implements store.ExpenseWriter
func (r *SQLiteRepository) Add(ctx context.Context, e core.NewExpense) (core.Expense, error) {
	created := e.Build(r.newID())
	if err := insertExpense(ctx, r.db, created); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", created.ID,
		"title", created.Title,
		"amount_cents", created.Amount.Cents,
		"category_id", created.Category.ID)

	return created, nil
}

// All implements store.ExpenseLister
func (r *SQLiteRepository) All(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, category_id, category_name, category_color,
			category_icon, date, description, status
		FROM expenses
		ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e      core.Expense
			date   string
			status string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount.Cents, &e.Category.ID, &e.Category.Name,
			&e.Category.Color, &e.Category.Icon, &date, &e.Description, &status); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		e.Status = core.Status(status)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// Categories implements store.CategoryReader
func (r *SQLiteRepository) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, icon FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
