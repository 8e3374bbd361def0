package review

import (
	"context"
	"errors"
	"testing"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"
	"bookreview/internal/events"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type serviceMocks struct {
	repo      *MockRepository
	books     *MockBookFinder
	ratings   *MockRecomputer
	publisher *MockPublisher
}

func newTestService(t *testing.T) (*Service, serviceMocks) {
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		repo:      NewMockRepository(ctrl),
		books:     NewMockBookFinder(ctrl),
		ratings:   NewMockRecomputer(ctrl),
		publisher: NewMockPublisher(ctrl),
	}
	return NewService(m.repo, m.books, m.ratings, m.publisher, zap.NewNop()), m
}

func TestService_AddReview(t *testing.T) {
	ctx := context.Background()
	summary := entity.RatingSummary{BookID: "b1", AverageRating: 4, ReviewCount: 1}

	t.Run("success recomputes once and publishes", func(t *testing.T) {
		svc, m := newTestService(t)
		m.books.EXPECT().FindByID(gomock.Any(), "b1").Return(entity.Book{ID: "b1"}, nil)
		m.repo.EXPECT().FindByBookAndUser(gomock.Any(), "b1", "u1").Return(entity.Review{}, apperr.NotFound("Review not found"))
		m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *entity.Review) error {
			r.ID = "r1"
			return nil
		})
		m.ratings.EXPECT().Recompute(gomock.Any(), "b1").Return(summary, nil).Times(1)
		gomock.InOrder(
			m.publisher.EXPECT().ReviewChanged(gomock.Any(), events.KindCreated, gomock.Any()).Return(nil),
			m.publisher.EXPECT().RatingUpdated(gomock.Any(), summary).Return(nil),
		)

		rv, err := svc.AddReview(ctx, "b1", "u1", 4, "great")
		require.NoError(t, err)
		assert.Equal(t, "r1", rv.ID)
		assert.Equal(t, 4, rv.Rating)
		assert.Equal(t, "great", rv.Comment)
	})

	t.Run("missing book", func(t *testing.T) {
		svc, m := newTestService(t)
		m.books.EXPECT().FindByID(gomock.Any(), "b1").Return(entity.Book{}, apperr.NotFound("Book not found"))

		_, err := svc.AddReview(ctx, "b1", "u1", 4, "")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Equal(t, "Book not found", apperr.Message(err, ""))
	})

	t.Run("existing review is conflict without recompute", func(t *testing.T) {
		svc, m := newTestService(t)
		m.books.EXPECT().FindByID(gomock.Any(), "b1").Return(entity.Book{ID: "b1"}, nil)
		m.repo.EXPECT().FindByBookAndUser(gomock.Any(), "b1", "u1").Return(entity.Review{ID: "r0"}, nil)

		_, err := svc.AddReview(ctx, "b1", "u1", 4, "")
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Equal(t, "You have already reviewed this book", apperr.Message(err, ""))
	})

	t.Run("losing the insert race is conflict", func(t *testing.T) {
		svc, m := newTestService(t)
		m.books.EXPECT().FindByID(gomock.Any(), "b1").Return(entity.Book{ID: "b1"}, nil)
		m.repo.EXPECT().FindByBookAndUser(gomock.Any(), "b1", "u1").Return(entity.Review{}, apperr.NotFound("Review not found"))
		m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(apperr.Conflict("duplicate"))

		_, err := svc.AddReview(ctx, "b1", "u1", 4, "")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("recompute failure still announces the review", func(t *testing.T) {
		svc, m := newTestService(t)
		m.books.EXPECT().FindByID(gomock.Any(), "b1").Return(entity.Book{ID: "b1"}, nil)
		m.repo.EXPECT().FindByBookAndUser(gomock.Any(), "b1", "u1").Return(entity.Review{}, apperr.NotFound("Review not found"))
		m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *entity.Review) error {
			r.ID = "r1"
			return nil
		})
		m.ratings.EXPECT().Recompute(gomock.Any(), "b1").Return(entity.RatingSummary{}, errors.New("db down"))
		m.publisher.EXPECT().ReviewChanged(gomock.Any(), events.KindCreated, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ events.Kind, r entity.Review) error {
				assert.Equal(t, "r1", r.ID)
				assert.Equal(t, "b1", r.BookID)
				return nil
			}).Times(1)
		m.publisher.EXPECT().RatingUpdated(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.AddReview(ctx, "b1", "u1", 4, "")
		assert.ErrorIs(t, err, apperr.ErrInternal)
	})

	t.Run("publish failure is logged only", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		ctrl := gomock.NewController(t)
		m := serviceMocks{NewMockRepository(ctrl), NewMockBookFinder(ctrl), NewMockRecomputer(ctrl), NewMockPublisher(ctrl)}
		svc := NewService(m.repo, m.books, m.ratings, m.publisher, zap.New(core))

		m.books.EXPECT().FindByID(gomock.Any(), "b1").Return(entity.Book{ID: "b1"}, nil)
		m.repo.EXPECT().FindByBookAndUser(gomock.Any(), "b1", "u1").Return(entity.Review{}, apperr.NotFound("Review not found"))
		m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		m.ratings.EXPECT().Recompute(gomock.Any(), "b1").Return(summary, nil)
		m.publisher.EXPECT().ReviewChanged(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("circuit open"))
		m.publisher.EXPECT().RatingUpdated(gomock.Any(), summary).Return(errors.New("circuit open"))

		_, err := svc.AddReview(ctx, "b1", "u1", 4, "")
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("publish review event").Len())
		assert.Equal(t, 1, logs.FilterMessage("publish rating event").Len())
	})
}

func TestService_UpdateReview(t *testing.T) {
	ctx := context.Background()
	existing := entity.Review{ID: "r1", BookID: "b1", UserID: "u1", Rating: 3, Comment: "ok"}

	t.Run("owner updates", func(t *testing.T) {
		svc, m := newTestService(t)
		patch := entity.ReviewPatch{Rating: 5}
		m.repo.EXPECT().FindByID(gomock.Any(), "r1").Return(existing, nil)
		m.repo.EXPECT().Update(gomock.Any(), "r1", patch).Return(patch.Apply(existing), nil)
		m.ratings.EXPECT().Recompute(gomock.Any(), "b1").Return(entity.RatingSummary{BookID: "b1"}, nil)
		m.publisher.EXPECT().ReviewChanged(gomock.Any(), events.KindUpdated, gomock.Any()).Return(nil)
		m.publisher.EXPECT().RatingUpdated(gomock.Any(), entity.RatingSummary{BookID: "b1"}).Return(nil)

		rv, err := svc.UpdateReview(ctx, "r1", "u1", patch)
		require.NoError(t, err)
		assert.Equal(t, 5, rv.Rating)
		assert.Equal(t, "ok", rv.Comment)
	})

	t.Run("other user is rejected before any write", func(t *testing.T) {
		svc, m := newTestService(t)
		m.repo.EXPECT().FindByID(gomock.Any(), "r1").Return(existing, nil)

		_, err := svc.UpdateReview(ctx, "r1", "u2", entity.ReviewPatch{Rating: 1})
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.Equal(t, "Not authorized to update this review", apperr.Message(err, ""))
	})

	t.Run("missing review", func(t *testing.T) {
		svc, m := newTestService(t)
		m.repo.EXPECT().FindByID(gomock.Any(), "r1").Return(entity.Review{}, apperr.NotFound("Review not found"))

		_, err := svc.UpdateReview(ctx, "r1", "u1", entity.ReviewPatch{Rating: 1})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestService_DeleteReview(t *testing.T) {
	ctx := context.Background()
	existing := entity.Review{ID: "r1", BookID: "b1", UserID: "u1", Rating: 3}

	t.Run("owner deletes last review", func(t *testing.T) {
		svc, m := newTestService(t)
		m.repo.EXPECT().FindByID(gomock.Any(), "r1").Return(existing, nil)
		m.repo.EXPECT().Delete(gomock.Any(), "r1").Return(nil)
		m.ratings.EXPECT().Recompute(gomock.Any(), "b1").Return(entity.RatingSummary{BookID: "b1"}, nil)
		m.publisher.EXPECT().ReviewChanged(gomock.Any(), events.KindDeleted, existing).Return(nil)
		m.publisher.EXPECT().RatingUpdated(gomock.Any(), entity.RatingSummary{BookID: "b1"}).Return(nil)

		require.NoError(t, svc.DeleteReview(ctx, "r1", "u1"))
	})

	t.Run("other user", func(t *testing.T) {
		svc, m := newTestService(t)
		m.repo.EXPECT().FindByID(gomock.Any(), "r1").Return(existing, nil)

		err := svc.DeleteReview(ctx, "r1", "u2")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.Equal(t, "Not authorized to delete this review", apperr.Message(err, ""))
	})

	t.Run("recompute failure after delete still announces it", func(t *testing.T) {
		svc, m := newTestService(t)
		m.repo.EXPECT().FindByID(gomock.Any(), "r1").Return(existing, nil)
		m.repo.EXPECT().Delete(gomock.Any(), "r1").Return(nil)
		m.ratings.EXPECT().Recompute(gomock.Any(), "b1").Return(entity.RatingSummary{}, apperr.Internal("store book rating", errors.New("db down")))
		m.publisher.EXPECT().ReviewChanged(gomock.Any(), events.KindDeleted, existing).Return(nil)

		assert.ErrorIs(t, svc.DeleteReview(ctx, "r1", "u1"), apperr.ErrInternal)
	})

	t.Run("concurrently deleted", func(t *testing.T) {
		svc, m := newTestService(t)
		m.repo.EXPECT().FindByID(gomock.Any(), "r1").Return(existing, nil)
		m.repo.EXPECT().Delete(gomock.Any(), "r1").Return(apperr.NotFound("Review not found"))

		assert.ErrorIs(t, svc.DeleteReview(ctx, "r1", "u1"), apperr.ErrNotFound)
	})
}
