package main

import (
	"context"
	"fmt"
	"time"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/events"
	"bookreview/internal/platform/database"
	"bookreview/internal/rating"
	"bookreview/internal/review"
	"bookreview/internal/user"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type stores struct {
	books   book.Repository
	reviews review.Repository
	users   user.Repository
	ready   func(ctx context.Context) error
	close   func()
}

// openStores picks Postgres or in-memory repositories per STORE_DRIVER.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory stores, data is lost on restart")
		return stores{
			books:   book.NewMemoryRepo(),
			reviews: review.NewMemoryRepo(),
			users:   user.NewMemoryRepo(),
			ready:   func(context.Context) error { return nil },
			close:   func() {},
		}, nil
	}

	pool, err := database.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return stores{}, err
	}
	log.Info("database connection OK", zap.String("dsn", database.RedactDSN(cfg.DatabaseDSN)))
	return postgresStores(pool, cfg.QueryTimeout), nil
}

func postgresStores(pool *pgxpool.Pool, timeout time.Duration) stores {
	return stores{
		books:   book.NewPostgresRepo(pool, timeout),
		reviews: review.NewPostgresRepo(pool, timeout),
		users:   user.NewPostgresRepo(pool, timeout),
		ready:   pool.Ping,
		close:   pool.Close,
	}
}

// newLocker returns the per-book lock used by the rating aggregator. Postgres
// and Redis locks are shared with the worker and other API replicas; the
// local lock is only accepted for the memory store.
func newLocker(ctx context.Context, cfg config.Config, log *zap.Logger) (rating.Locker, func(), error) {
	switch cfg.LockBackend {
	case config.LockBackendPostgres:
		lockPool, err := database.OpenWithMaxConns(ctx, cfg.DatabaseDSN, cfg.LockPoolSize)
		if err != nil {
			return nil, nil, fmt.Errorf("open lock pool: %w", err)
		}
		log.Info("postgres advisory lock backend ready", zap.Int32("pool_size", cfg.LockPoolSize))
		return rating.NewAdvisoryLocker(lockPool, log), lockPool.Close, nil
	case config.LockBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		log.Info("redis lock backend ready", zap.String("addr", cfg.RedisAddr))
		return rating.NewRedisLocker(client, cfg.LockTTL, log), func() { _ = client.Close() }, nil
	default:
		return rating.NewKeyedMutex(), func() {}, nil
	}
}

type services struct {
	books      *book.Service
	reviews    *review.Service
	users      *user.Service
	auth       *auth.Service
	aggregator *rating.Aggregator
}

func newServices(st stores, locker rating.Locker, publisher review.Publisher, cfg config.Config, log *zap.Logger) services {
	users := user.NewService(st.users)
	aggregator := rating.NewAggregator(st.reviews, st.books, locker, log)
	return services{
		books:      book.NewService(st.books, st.reviews, users),
		reviews:    review.NewService(st.reviews, st.books, aggregator, publisher, log),
		users:      users,
		auth:       auth.NewService(cfg.JWTSecret, cfg.TokenTTL, users),
		aggregator: aggregator,
	}
}

func newPublisher(cfg config.Config, log *zap.Logger) (*events.Publisher, error) {
	return events.NewPublisher(cfg.NATSURL, events.DefaultBreakerConfig(), log)
}
