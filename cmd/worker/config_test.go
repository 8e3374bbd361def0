package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("requires nats url", func(t *testing.T) {
		t.Setenv("NATS_URL", "")

		_, err := loadConfig()
		assert.ErrorIs(t, err, errNATSRequired)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("NATS_URL", "nats://localhost:4222")

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "rating_recompute", cfg.Durable)
		assert.Equal(t, 50, cfg.BatchSize)
		assert.Equal(t, "postgres", cfg.LockBackend)
	})

	t.Run("rejects unknown lock backend", func(t *testing.T) {
		t.Setenv("NATS_URL", "nats://localhost:4222")
		t.Setenv("LOCK_BACKEND", "zookeeper")

		_, err := loadConfig()
		assert.ErrorContains(t, err, "LOCK_BACKEND")
	})

	t.Run("rejects in-process lock", func(t *testing.T) {
		t.Setenv("NATS_URL", "nats://localhost:4222")
		t.Setenv("LOCK_BACKEND", "local")

		_, err := loadConfig()
		assert.ErrorContains(t, err, "LOCK_BACKEND=local")
	})

	t.Run("rejects non-positive batch size", func(t *testing.T) {
		t.Setenv("NATS_URL", "nats://localhost:4222")
		t.Setenv("CONSUMER_BATCH_SIZE", "0")

		_, err := loadConfig()
		assert.ErrorContains(t, err, "CONSUMER_BATCH_SIZE")
	})
}
