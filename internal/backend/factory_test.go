package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/amqp"
	"kharcha/internal/config"
)

func TestCreateBackends(t *testing.T) {
	for _, typ := range Types() {
		t.Run(typ.String(), func(t *testing.T) {
			res, err := NewFactory(nil).Create(context.Background(), Config{Type: typ})
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, res.Cleanup()) })

			all, err := res.Store.All(context.Background())
			require.NoError(t, err)
			assert.Len(t, all, 3)
			assert.Nil(t, res.Publisher)
		})
	}
}

func TestCreateUnknownBackend(t *testing.T) {
	_, err := NewFactory(nil).Create(context.Background(), Config{Type: "sheets"})
	assert.Error(t, err)
}

func TestUnreachableBrokerLeavesPublisherUnset(t *testing.T) {
	f := NewFactory(nil)
	called := false
	f.dial = func(context.Context, string, string, string, int) (*amqp.Client, error) {
		called = true
		return nil, errors.New("connection refused")
	}

	res, err := f.Create(context.Background(), Config{Type: MemoryBackend, AMQPURL: "amqp://localhost"})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Nil(t, res.Publisher, "a failed dial must not leave a typed nil publisher")
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", AMQPExchange: "kharcha"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "kharcha", cfg.AMQPExchange)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}
