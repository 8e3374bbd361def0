package review

import (
	"context"
	"errors"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"
	"bookreview/internal/events"

	"go.uber.org/zap"
)

// Service orchestrates review mutations. Every committed mutation is
// followed by exactly one recompute of the affected book's rating.
type Service struct {
	repo      Repository
	books     BookFinder
	ratings   Recomputer
	publisher Publisher
	log       *zap.Logger
}

func NewService(repo Repository, books BookFinder, ratings Recomputer, publisher Publisher, log *zap.Logger) *Service {
	return &Service{repo: repo, books: books, ratings: ratings, publisher: publisher, log: log}
}

// AddReview creates userID's review of bookID.
func (s *Service) AddReview(ctx context.Context, bookID, userID string, rating int, comment string) (entity.Review, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return entity.Review{}, apperr.NotFound("Book not found")
		}
		return entity.Review{}, apperr.Internal("find book", err)
	}

	_, err := s.repo.FindByBookAndUser(ctx, bookID, userID)
	switch {
	case err == nil:
		return entity.Review{}, duplicateReview()
	case !errors.Is(err, apperr.ErrNotFound):
		return entity.Review{}, apperr.Internal("find existing review", err)
	}

	r := entity.Review{BookID: bookID, UserID: userID, Rating: rating, Comment: comment}
	if err := s.repo.Insert(ctx, &r); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return entity.Review{}, duplicateReview()
		}
		return entity.Review{}, apperr.Internal("insert review", err)
	}

	if err := s.afterCommit(ctx, events.KindCreated, r); err != nil {
		return entity.Review{}, err
	}
	return r, nil
}

// UpdateReview applies the supplied fields of patch to the requester's own
// review.
func (s *Service) UpdateReview(ctx context.Context, reviewID, requesterID string, patch entity.ReviewPatch) (entity.Review, error) {
	existing, err := s.owned(ctx, reviewID, requesterID, "Not authorized to update this review")
	if err != nil {
		return entity.Review{}, err
	}

	updated, err := s.repo.Update(ctx, existing.ID, patch)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return entity.Review{}, apperr.NotFound("Review not found")
		}
		return entity.Review{}, apperr.Internal("update review", err)
	}

	if err := s.afterCommit(ctx, events.KindUpdated, updated); err != nil {
		return entity.Review{}, err
	}
	return updated, nil
}

// DeleteReview removes the requester's own review. Removing a book's last
// review resets its rating to 0.0 with a count of 0.
func (s *Service) DeleteReview(ctx context.Context, reviewID, requesterID string) error {
	existing, err := s.owned(ctx, reviewID, requesterID, "Not authorized to delete this review")
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("Review not found")
		}
		return apperr.Internal("delete review", err)
	}

	return s.afterCommit(ctx, events.KindDeleted, existing)
}

func (s *Service) owned(ctx context.Context, reviewID, requesterID, denied string) (entity.Review, error) {
	r, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return entity.Review{}, apperr.NotFound("Review not found")
		}
		return entity.Review{}, apperr.Internal("find review", err)
	}
	if r.UserID != requesterID {
		return entity.Review{}, apperr.Unauthorized(denied)
	}
	return r, nil
}

// afterCommit recomputes the book's rating and announces the change. The
// review event goes out even when the recompute fails so the worker can heal
// the book; the rating event only follows a stored aggregate. Publish
// failures are only logged.
func (s *Service) afterCommit(ctx context.Context, kind events.Kind, r entity.Review) error {
	summary, recomputeErr := s.ratings.Recompute(ctx, r.BookID)

	if s.publisher != nil {
		if err := s.publisher.ReviewChanged(ctx, kind, r); err != nil {
			s.log.Warn("publish review event",
				zap.String("kind", string(kind)),
				zap.String("review_id", r.ID),
				zap.String("book_id", r.BookID),
				zap.Error(err),
			)
		}
	}

	if recomputeErr != nil {
		if errors.Is(recomputeErr, apperr.ErrInternal) {
			return recomputeErr
		}
		return apperr.Internal("recompute book rating", recomputeErr)
	}

	if s.publisher != nil {
		if err := s.publisher.RatingUpdated(ctx, summary); err != nil {
			s.log.Warn("publish rating event", zap.String("book_id", r.BookID), zap.Error(err))
		}
	}
	return nil
}

func duplicateReview() error {
	return apperr.Conflict("You have already reviewed this book")
}
