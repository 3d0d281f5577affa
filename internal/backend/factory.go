package backend

import (
	"context"
	"errors"
	"fmt"

	"kharcha/internal/amqp"
	applog "kharcha/internal/log"
	"kharcha/internal/storage"
	"kharcha/internal/store"
	"kharcha/internal/store/memory"
)

// DialFunc connects the event publisher; it is replaced in tests.
type DialFunc func(ctx context.Context, url, exchange, routingKey string, attempts int) (*amqp.Client, error)

type DefaultFactory struct {
	logger *applog.Logger
	dial   DialFunc
}

func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
		dial:   amqp.Dial,
	}
}

// Create builds a seeded store of the configured type. A publisher is
// attached when an AMQP URL is set; failing to reach the broker only logs a
// warning and the service runs without events.
func (f *DefaultFactory) Create(ctx context.Context, cfg Config) (*Result, error) {
	var (
		st      store.Store
		cleanup []CleanupFunc
	)
	switch cfg.Type {
	case MemoryBackend:
		st = memory.NewSeeded()
		f.logger.Info("Initialized memory backend")
	case SQLiteBackend:
		repo, err := storage.NewSeededRepository(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		st = repo
		cleanup = append(cleanup, repo.Close)
		f.logger.Info("Initialized in-memory SQLite backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}

	res := &Result{Store: st}
	if cfg.AMQPURL != "" {
		attempts := cfg.AMQPDialAttempts
		if attempts < 1 {
			attempts = 1
		}
		client, err := f.dial(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, attempts)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		} else {
			res.Publisher = client
			cleanup = append(cleanup, client.Close)
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"routing_key", cfg.AMQPRoutingKey)
		}
	}

	res.Cleanup = func() error {
		var errs []error
		for _, fn := range cleanup {
			errs = append(errs, fn())
		}
		return errors.Join(errs...)
	}
	return res, nil
}
