// Package rating keeps the denormalized averageRating/reviewCount on books
// in step with their reviews.
package rating

import (
	"context"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

//go:generate mockgen -source=aggregator.go -destination=mock_ports.go -package=rating

// ReviewLister reads the full review set of a book.
type ReviewLister interface {
	ListByBook(ctx context.Context, bookID string) ([]entity.Review, error)
}

// AggregateWriter persists the derived pair in one write.
type AggregateWriter interface {
	UpdateAggregate(ctx context.Context, bookID string, averageRating float64, reviewCount int) error
}

// Aggregator recomputes a book's rating from ground truth. Recomputes for
// the same book are serialized through the Locker; different books run in
// parallel.
type Aggregator struct {
	reviews ReviewLister
	books   AggregateWriter
	locker  Locker
	log     *zap.Logger
	tracer  trace.Tracer
}

func NewAggregator(reviews ReviewLister, books AggregateWriter, locker Locker, log *zap.Logger) *Aggregator {
	return &Aggregator{
		reviews: reviews,
		books:   books,
		locker:  locker,
		log:     log,
		tracer:  otel.Tracer("bookreview/rating"),
	}
}

func lockKey(bookID string) string {
	return "book-rating:" + bookID
}

// Recompute reads every review of bookID, derives the average and count,
// and writes both to the book. It is idempotent: any number of calls with
// no review change in between store the same pair.
func (a *Aggregator) Recompute(ctx context.Context, bookID string) (entity.RatingSummary, error) {
	ctx, span := a.tracer.Start(ctx, "rating.Recompute", trace.WithAttributes(attribute.String("book.id", bookID)))
	defer span.End()

	waitStart := time.Now()
	release, err := a.locker.Lock(ctx, lockKey(bookID))
	lockWaitDuration.Observe(time.Since(waitStart).Seconds())
	if err != nil {
		return a.fail(span, outcomeLockError, bookID, apperr.Internal("acquire rating lock", err))
	}
	defer release()

	start := time.Now()
	defer func() { recomputeDuration.Observe(time.Since(start).Seconds()) }()

	reviews, err := a.reviews.ListByBook(ctx, bookID)
	if err != nil {
		return a.fail(span, outcomeReadError, bookID, apperr.Internal("list reviews for rating", err))
	}

	summary := Summarize(bookID, reviews)
	if err := a.books.UpdateAggregate(ctx, bookID, summary.AverageRating, summary.ReviewCount); err != nil {
		return a.fail(span, outcomeWriteErr, bookID, apperr.Internal("store book rating", err))
	}

	recomputeTotal.WithLabelValues(outcomeOK).Inc()
	span.SetAttributes(
		attribute.Float64("rating.average", summary.AverageRating),
		attribute.Int("rating.count", summary.ReviewCount),
	)
	a.log.Debug("book rating recomputed",
		zap.String("book_id", bookID),
		zap.Float64("average_rating", summary.AverageRating),
		zap.Int("review_count", summary.ReviewCount),
	)
	return summary, nil
}

func (a *Aggregator) fail(span trace.Span, outcome, bookID string, err error) (entity.RatingSummary, error) {
	recomputeTotal.WithLabelValues(outcome).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	a.log.Error("book rating recompute failed",
		zap.String("book_id", bookID),
		zap.String("outcome", outcome),
		zap.Error(err),
	)
	return entity.RatingSummary{}, err
}
