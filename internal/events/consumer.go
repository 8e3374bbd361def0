package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookreview/internal/entity"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Recomputer rebuilds a book's rating from its reviews. It must be
// idempotent because JetStream delivery is at-least-once.
type Recomputer interface {
	Recompute(ctx context.Context, bookID string) (entity.RatingSummary, error)
}

// ConsumerConfig tunes the pull subscription.
type ConsumerConfig struct {
	Durable   string
	BatchSize int
	MaxWait   time.Duration
}

func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{Durable: "rating_recompute", BatchSize: 50, MaxWait: 2 * time.Second}
}

// Consumer recomputes ratings for every review event it receives. Running
// it next to the API repairs aggregates left stale by a failed in-request
// recompute.
type Consumer struct {
	js  nats.JetStreamContext
	rc  Recomputer
	cfg ConsumerConfig
	log *zap.Logger
}

func NewConsumer(js nats.JetStreamContext, rc Recomputer, cfg ConsumerConfig, log *zap.Logger) *Consumer {
	return &Consumer{js: js, rc: rc, cfg: cfg, log: log}
}

// Run pulls batches until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	sub, err := c.js.PullSubscribe(SubjectReviewsAll, c.cfg.Durable)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectReviewsAll, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	c.log.Info("review consumer started",
		zap.String("subject", SubjectReviewsAll),
		zap.String("durable", c.cfg.Durable),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := sub.Fetch(c.cfg.BatchSize, nats.MaxWait(c.cfg.MaxWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			c.log.Error("fetch review events", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		for _, m := range msgs {
			if err := c.HandleMessage(ctx, m.Data); err != nil {
				if errors.Is(err, ErrMalformedEvent) {
					c.log.Error("dropping malformed review event", zap.String("subject", m.Subject), zap.Error(err))
					if err := m.Term(); err != nil {
						c.log.Error("term review event", zap.Error(err))
					}
					continue
				}
				c.log.Warn("review event not processed, redelivering", zap.Error(err))
				if err := m.Nak(); err != nil {
					c.log.Error("nak review event", zap.Error(err))
				}
				continue
			}
			if err := m.Ack(); err != nil {
				c.log.Error("ack review event", zap.Error(err))
			}
		}
	}
}

// ErrMalformedEvent marks payloads that can never succeed; Run terminates
// them instead of asking for redelivery.
var ErrMalformedEvent = errors.New("malformed review event")

// HandleMessage decodes one review event and recomputes its book.
func (c *Consumer) HandleMessage(ctx context.Context, data []byte) error {
	var evt ReviewEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.BookID == "" {
		return fmt.Errorf("%w: missing book_id", ErrMalformedEvent)
	}

	summary, err := c.rc.Recompute(ctx, evt.BookID)
	if err != nil {
		return fmt.Errorf("recompute book %s: %w", evt.BookID, err)
	}
	c.log.Debug("rating recomputed from event",
		zap.String("event_id", evt.EventID),
		zap.String("kind", string(evt.Kind)),
		zap.String("book_id", evt.BookID),
		zap.Float64("average_rating", summary.AverageRating),
		zap.Int("review_count", summary.ReviewCount),
	)
	return nil
}
