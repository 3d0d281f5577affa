package memory

import (
	"context"
	"sync"

	"kharcha/internal/core"
)

// Store keeps expenses in a slice ordered newest first.
type Store struct {
	mu    sync.Mutex
	cats  []core.Category
	items []core.Expense
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc replaces the id generator, mostly for tests.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New builds a store holding the given categories and records. The seed is
// expected newest first and is copied.
func New(cats []core.Category, seed []core.Expense, opts ...Option) *Store {
	s := &Store{
		cats:  append([]core.Category(nil), cats...),
		items: append([]core.Expense(nil), seed...),
		newID: core.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded returns a store with the default categories and sample expenses.
func NewSeeded(opts ...Option) *Store {
	cats := core.DefaultCategories()
	return New(cats, core.SeedExpenses(cats), opts...)
}

// Add stores the expense in front of the existing ones.
func (s *Store) Add(_ context.Context, e core.NewExpense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := e.Build(s.newID())
	items := make([]core.Expense, 0, len(s.items)+1)
	items = append(items, created)
	s.items = append(items, s.items...)
	return created, nil
}

// All returns a copy of the stored expenses.
func (s *Store) All(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...), nil
}

func (s *Store) Categories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}
