// Command worker consumes review events from JetStream and recomputes the
// affected book's rating. It runs alongside the API and repairs aggregates
// that an in-request recompute failed to write. It shares the API's per-book
// lock through Postgres or Redis, never an in-process one.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/events"
	"bookreview/internal/platform/database"
	"bookreview/internal/platform/logging"
	"bookreview/internal/platform/tracing"
	"bookreview/internal/rating"
	"bookreview/internal/review"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRate:   cfg.OTelSample,
		Enabled:      cfg.OTelEnabled,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	pool, err := database.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	var locker rating.Locker
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer func() { _ = client.Close() }()
		locker = rating.NewRedisLocker(client, cfg.LockTTL, log)
	default:
		lockPool, err := database.OpenWithMaxConns(ctx, cfg.DatabaseDSN, cfg.LockPoolSize)
		if err != nil {
			return fmt.Errorf("open lock pool: %w", err)
		}
		defer lockPool.Close()
		locker = rating.NewAdvisoryLocker(lockPool, log)
	}

	aggregator := rating.NewAggregator(
		review.NewPostgresRepo(pool, cfg.QueryTimeout),
		book.NewPostgresRepo(pool, cfg.QueryTimeout),
		locker,
		log,
	)

	nc, err := events.Connect(cfg.NATSURL)
	if err != nil {
		return err
	}
	defer func() { _ = nc.Drain() }()

	js, err := nc.JetStream()
	if err != nil {
		return fmt.Errorf("jetstream context: %w", err)
	}
	events.EnsureStream(js, log)

	consumerCfg := events.DefaultConsumerConfig()
	consumerCfg.Durable = cfg.Durable
	consumerCfg.BatchSize = cfg.BatchSize

	log.Info("starting worker", zap.String("nats", cfg.NATSURL), zap.String("lock", cfg.LockBackend))
	return events.NewConsumer(js, aggregator, consumerCfg, log).Run(ctx)
}
