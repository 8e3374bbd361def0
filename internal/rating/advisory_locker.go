package rating

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TxBeginner starts transactions; *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AdvisoryLocker serializes holders of a key across every process sharing
// the database with a transaction-scoped Postgres advisory lock. The lock is
// freed on release or when the holder's connection dies.
//
// db should be a pool separate from the one the repositories query through:
// waiters park a connection each, and the holder still needs a free one to
// list reviews and write the aggregate.
type AdvisoryLocker struct {
	db  TxBeginner
	log *zap.Logger
}

func NewAdvisoryLocker(db TxBeginner, log *zap.Logger) *AdvisoryLocker {
	return &AdvisoryLocker{db: db, log: log}
}

func (l *AdvisoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin lock tx for %s: %w", key, err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("advisory lock %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
				l.log.Warn("release advisory lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}
