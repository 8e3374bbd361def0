// Package events publishes review mutations and rating changes to NATS
// JetStream and consumes them in the worker.
package events

import (
	"time"

	"bookreview/internal/entity"
)

// Kind names a committed review transition.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

const (
	StreamName           = "BOOKREVIEW"
	SubjectReviewsPrefix = "reviews."
	SubjectReviewsAll    = "reviews.>"
	SubjectRatingUpdated = "books.rating.updated"
)

// ReviewSubject returns the subject a review event of kind k is sent on.
func ReviewSubject(k Kind) string {
	return SubjectReviewsPrefix + string(k)
}

// ReviewEvent is the payload published after a review mutation commits.
type ReviewEvent struct {
	EventID    string    `json:"event_id"`
	Kind       Kind      `json:"kind"`
	ReviewID   string    `json:"review_id"`
	BookID     string    `json:"book_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RatingUpdatedEvent carries the aggregate a recompute stored.
type RatingUpdatedEvent struct {
	EventID       string    `json:"event_id"`
	BookID        string    `json:"book_id"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func newRatingUpdated(eventID string, s entity.RatingSummary, at time.Time) RatingUpdatedEvent {
	return RatingUpdatedEvent{
		EventID:       eventID,
		BookID:        s.BookID,
		AverageRating: s.AverageRating,
		ReviewCount:   s.ReviewCount,
		OccurredAt:    at,
	}
}
