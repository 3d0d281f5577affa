package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"kharcha/internal/cache"
	"kharcha/internal/core"
	applog "kharcha/internal/log"
	"kharcha/internal/metrics"
	"kharcha/internal/store"
)

const snapshotKey = "expenses"

// EventPublisher receives every expense after it is stored.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense) error
}

// ExpenseInput is an add-expense request as typed by a user.
type ExpenseInput struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	CategoryID  string `json:"category_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type Options struct {
	Clock     core.Clock
	Publisher EventPublisher
	Logger    *applog.Logger
	CacheTTL  time.Duration
	CacheSize int
	Reports   core.ReportOptions
}

// ExpenseService owns the application state: the store, the clock and the
// read cache. Handlers and commands go through it instead of the store.
type ExpenseService struct {
	// mu orders store writes against cache refills so a refill never
	// caches a snapshot older than the last add.
	mu sync.RWMutex

	store     store.Store
	clock     core.Clock
	publisher EventPublisher
	logger    *applog.Logger
	events    *applog.StructuredLogger
	cache     *cache.LRUCache[[]core.Expense]
	reports   core.ReportOptions
}

func NewExpenseService(st store.Store, opts Options) *ExpenseService {
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 16
	}
	logger := opts.Logger.WithComponent(applog.ComponentExpense)
	return &ExpenseService{
		store:     st,
		clock:     opts.Clock,
		publisher: opts.Publisher,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
		cache:     cache.NewLRUCache[[]core.Expense](opts.CacheSize, opts.CacheTTL),
		reports:   opts.Reports,
	}
}

// Cache exposes the read cache so it can be registered with a janitor.
func (s *ExpenseService) Cache() *cache.LRUCache[[]core.Expense] {
	return s.cache
}

// IsValidationError reports whether err was caused by bad user input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrEmptyTitle,
		core.ErrTitleTooLong,
		core.ErrUnknownCategory,
		core.ErrInvalidStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationReason(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, core.ErrInvalidDate):
		return "date"
	case errors.Is(err, core.ErrEmptyTitle), errors.Is(err, core.ErrTitleTooLong):
		return "title"
	case errors.Is(err, core.ErrUnknownCategory):
		return "category"
	default:
		return "other"
	}
}

// AddExpense parses and validates in, then stores it as a pending expense.
// The new expense is first in every later listing.
func (s *ExpenseService) AddExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	e, err := s.parse(ctx, in)
	if err == nil {
		err = e.Validate()
	}
	if err != nil {
		if IsValidationError(err) {
			metrics.ExpenseValidationFailures.WithLabelValues(validationReason(err)).Inc()
		}
		return core.Expense{}, err
	}

	s.mu.Lock()
	created, err := s.store.Add(ctx, e)
	if err == nil {
		s.cache.Purge()
	}
	s.mu.Unlock()
	if err != nil {
		s.events.LogError(ctx, "Failed to store expense", err, applog.ComponentStorage, applog.OpCreate, nil)
		return core.Expense{}, fmt.Errorf("store expense: %w", err)
	}

	metrics.ExpensesCreated.WithLabelValues(created.Category.Name).Inc()
	s.events.LogExpenseCreated(ctx, created.ID, created.Title, created.Amount.Cents,
		created.Category.ID, created.Category.Name, created.Status.String())

	s.publish(ctx, created)
	return created, nil
}

func (s *ExpenseService) parse(ctx context.Context, in ExpenseInput) (core.NewExpense, error) {
	cents, err := core.ParseDecimalToCents(in.Amount)
	if err != nil {
		return core.NewExpense{}, fmt.Errorf("amount %q: %w", in.Amount, err)
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.NewExpense{}, fmt.Errorf("date %q: %w", in.Date, err)
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return core.NewExpense{}, fmt.Errorf("load categories: %w", err)
	}
	category, ok := core.FindCategory(categories, strings.TrimSpace(in.CategoryID))
	if !ok {
		return core.NewExpense{}, fmt.Errorf("category %q: %w", in.CategoryID, core.ErrUnknownCategory)
	}
	return core.NewExpense{
		Title:       strings.TrimSpace(in.Title),
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
	}, nil
}

// publish never fails the caller: the expense is already stored.
func (s *ExpenseService) publish(ctx context.Context, e core.Expense) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishExpenseCreated(ctx, e)
	metrics.EventOutcome(err)
	if err != nil {
		s.events.LogError(ctx, "Failed to publish expense event", err, applog.ComponentAMQP, applog.OpPublish,
			applog.NewFields().WithErrorType(applog.ErrorTypeNetwork))
	}
}

// snapshot returns every expense, newest first, from the cache when possible.
func (s *ExpenseService) snapshot(ctx context.Context) ([]core.Expense, error) {
	if cached, ok := s.cache.Get(snapshotKey); ok {
		metrics.CacheHit()
		return cached, nil
	}
	metrics.CacheMiss()

	s.mu.RLock()
	defer s.mu.RUnlock()
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	metrics.ExpensesStored.Set(float64(len(all)))
	s.cache.Set(snapshotKey, all)
	return all, nil
}

// Expenses returns the expenses matching q in stored order.
func (s *ExpenseService) Expenses(ctx context.Context, q core.Query) ([]core.Expense, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return core.Filter(all, q), nil
}

// Stats computes the dashboard cards over every expense.
func (s *ExpenseService) Stats(ctx context.Context) (core.Stats, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return core.Stats{}, err
	}
	return core.ComputeStats(all, s.clock.Now()), nil
}

func (s *ExpenseService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.Categories(ctx)
}

// CategoryList is the per-category breakdown in category order.
func (s *ExpenseService) CategoryList(ctx context.Context) ([]core.CategoryStat, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return core.CategoryBreakdown(all, categories), nil
}

func (s *ExpenseService) Report(ctx context.Context, kind core.ReportKind) (core.Report, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	report, err := core.BuildReport(kind, all, categories, s.clock.Now(), s.reports)
	if err != nil {
		return nil, err
	}
	metrics.ReportsBuilt.WithLabelValues(string(kind)).Inc()
	return report, nil
}

// Close releases the store and the publisher when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
