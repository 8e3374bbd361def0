package review

import (
	"context"

	"bookreview/internal/entity"
	"bookreview/internal/events"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=review

// Repository stores reviews. Insert is an atomic check-and-insert on
// (book, user) and reports a duplicate as apperr.ErrConflict.
type Repository interface {
	Insert(ctx context.Context, r *entity.Review) error
	FindByBookAndUser(ctx context.Context, bookID, userID string) (entity.Review, error)
	FindByID(ctx context.Context, id string) (entity.Review, error)
	Update(ctx context.Context, id string, patch entity.ReviewPatch) (entity.Review, error)
	Delete(ctx context.Context, id string) error
	ListByBook(ctx context.Context, bookID string) ([]entity.Review, error)
}

// BookFinder checks that a review targets an existing book.
type BookFinder interface {
	FindByID(ctx context.Context, id string) (entity.Book, error)
}

// Recomputer rebuilds the rating aggregate of one book.
type Recomputer interface {
	Recompute(ctx context.Context, bookID string) (entity.RatingSummary, error)
}

// Publisher announces committed review transitions and the ratings they
// produced.
type Publisher interface {
	ReviewChanged(ctx context.Context, kind events.Kind, r entity.Review) error
	RatingUpdated(ctx context.Context, summary entity.RatingSummary) error
}
