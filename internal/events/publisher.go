package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookreview/internal/entity"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// jetStream is the part of nats.JetStreamContext the publisher uses.
type jetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher sends events through a circuit breaker so a NATS outage fails
// fast instead of stalling every review request.
type Publisher struct {
	js      jetStream
	nc      *nats.Conn
	breaker *gobreaker.CircuitBreaker[*nats.PubAck]
	log     *zap.Logger
	now     func() time.Time
}

// BreakerConfig controls when publishing trips open.
type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// NewPublisher connects to NATS and ensures the stream exists.
// If natsURL is empty, returns a no-op publisher (stub).
func NewPublisher(natsURL string, cfg BreakerConfig, log *zap.Logger) (*Publisher, error) {
	if natsURL == "" {
		log.Warn("NATS_URL not set, review events will not be published (stub mode)")
		return &Publisher{log: log, now: time.Now}, nil
	}

	nc, err := Connect(natsURL)
	if err != nil {
		return nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	EnsureStream(js, log)

	log.Info("NATS publisher initialised", zap.String("stream", StreamName))
	p := newPublisher(js, cfg, log)
	p.nc = nc
	return p, nil
}

func newPublisher(js jetStream, cfg BreakerConfig, log *zap.Logger) *Publisher {
	breaker := gobreaker.NewCircuitBreaker[*nats.PubAck](gobreaker.Settings{
		Name:        "nats-publish",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit-breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Publisher{js: js, breaker: breaker, log: log, now: time.Now}
}

// Connect dials NATS with the reconnect policy shared by the API and worker.
func Connect(natsURL string) (*nats.Conn, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("bookreview"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// EnsureStream creates the stream if it doesn't exist.
func EnsureStream(js nats.JetStreamContext, log *zap.Logger) {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectReviewsAll, "books.>"},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		log.Warn("failed to create NATS stream (may already exist)", zap.Error(err))
	}
}

// Close drains the connection, if any.
func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

// ReviewChanged announces a committed review transition. The worker
// recomputes the book on every such event, so it is sent even when the
// in-request recompute failed.
func (p *Publisher) ReviewChanged(ctx context.Context, kind Kind, r entity.Review) error {
	evt := ReviewEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		ReviewID:   r.ID,
		BookID:     r.BookID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		OccurredAt: p.now().UTC(),
	}
	return p.publish(ctx, ReviewSubject(kind), evt.EventID, evt)
}

// RatingUpdated announces the aggregate a recompute stored for a book.
func (p *Publisher) RatingUpdated(ctx context.Context, summary entity.RatingSummary) error {
	rated := newRatingUpdated(uuid.NewString(), summary, p.now().UTC())
	return p.publish(ctx, SubjectRatingUpdated, rated.EventID, rated)
}

func (p *Publisher) publish(ctx context.Context, subject, eventID string, payload any) error {
	if p.js == nil {
		p.log.Debug("NATS stub: skipping publish", zap.String("subject", subject), zap.String("event_id", eventID))
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}

	ack, err := p.breaker.Execute(func() (*nats.PubAck, error) {
		return p.js.Publish(subject, data, nats.Context(ctx), nats.MsgId(eventID))
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.log.Debug("NATS event published",
		zap.String("subject", subject),
		zap.String("event_id", eventID),
		zap.Uint64("seq", ack.Sequence),
	)
	return nil
}
