package backend

import (
	"context"
	"fmt"

	"kharcha/internal/config"
	"kharcha/internal/services"
	"kharcha/internal/store"
)

// Type names a store implementation. Both keep data in process memory.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Types returns every valid backend type.
func Types() []Type {
	return []Type{MemoryBackend, SQLiteBackend}
}

// CleanupFunc releases what a backend holds.
type CleanupFunc func() error

// Result is a ready store plus the optional event publisher.
type Result struct {
	Store     store.Store
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

type Config struct {
	Type Type

	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
	// AMQPDialAttempts bounds the connection retries at startup.
	AMQPDialAttempts int
}

// FromAppConfig converts the application config to a backend config.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", cfg.DataBackend)
	}
	return Config{
		Type:             t,
		AMQPURL:          cfg.AMQPURL,
		AMQPExchange:     cfg.AMQPExchange,
		AMQPRoutingKey:   cfg.AMQPRoutingKey,
		AMQPDialAttempts: 3,
	}, nil
}

// Factory creates backends from configuration.
type Factory interface {
	Create(ctx context.Context, cfg Config) (*Result, error)
}
