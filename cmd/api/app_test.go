package main

import (
	"context"
	"testing"

	"bookreview/internal/config"
	"bookreview/internal/rating"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLocker(t *testing.T) {
	t.Run("memory store uses the in-process lock", func(t *testing.T) {
		locker, closeFn, err := newLocker(context.Background(), config.Config{LockBackend: config.LockBackendLocal}, zap.NewNop())
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &rating.KeyedMutex{}, locker)
	})

	t.Run("redis lock is shared through the server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		locker, closeFn, err := newLocker(context.Background(), config.Config{LockBackend: config.LockBackendRedis, RedisAddr: mr.Addr()}, zap.NewNop())
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &rating.RedisLocker{}, locker)
	})

	t.Run("unreachable redis fails startup", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, _, err := newLocker(context.Background(), config.Config{LockBackend: config.LockBackendRedis, RedisAddr: addr}, zap.NewNop())
		assert.ErrorContains(t, err, "ping redis")
	})
}
