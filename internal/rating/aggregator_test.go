package rating

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAggregator_Recompute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reviews := NewMockReviewLister(ctrl)
	books := NewMockAggregateWriter(ctrl)
	agg := NewAggregator(reviews, books, NewKeyedMutex(), zap.NewNop())

	t.Run("writes average and count", func(t *testing.T) {
		reviews.EXPECT().ListByBook(gomock.Any(), "b1").Return([]entity.Review{{Rating: 5}, {Rating: 3}, {Rating: 3}}, nil)
		books.EXPECT().UpdateAggregate(gomock.Any(), "b1", 3.7, 3).Return(nil)

		got, err := agg.Recompute(context.Background(), "b1")
		require.NoError(t, err)
		assert.Equal(t, entity.RatingSummary{BookID: "b1", AverageRating: 3.7, ReviewCount: 3}, got)
	})

	t.Run("empty set resets to zero", func(t *testing.T) {
		reviews.EXPECT().ListByBook(gomock.Any(), "b1").Return(nil, nil)
		books.EXPECT().UpdateAggregate(gomock.Any(), "b1", 0.0, 0).Return(nil)

		got, err := agg.Recompute(context.Background(), "b1")
		require.NoError(t, err)
		assert.Equal(t, 0, got.ReviewCount)
	})

	t.Run("idempotent", func(t *testing.T) {
		set := []entity.Review{{Rating: 4}, {Rating: 2}}
		reviews.EXPECT().ListByBook(gomock.Any(), "b1").Return(set, nil).Times(2)
		books.EXPECT().UpdateAggregate(gomock.Any(), "b1", 3.0, 2).Return(nil).Times(2)

		first, err := agg.Recompute(context.Background(), "b1")
		require.NoError(t, err)
		second, err := agg.Recompute(context.Background(), "b1")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("read error skips write", func(t *testing.T) {
		reviews.EXPECT().ListByBook(gomock.Any(), "b1").Return(nil, errors.New("conn reset"))

		_, err := agg.Recompute(context.Background(), "b1")
		assert.ErrorIs(t, err, apperr.ErrInternal)
	})

	t.Run("write error", func(t *testing.T) {
		reviews.EXPECT().ListByBook(gomock.Any(), "b1").Return([]entity.Review{{Rating: 1}}, nil)
		books.EXPECT().UpdateAggregate(gomock.Any(), "b1", 1.0, 1).Return(errors.New("conn reset"))

		_, err := agg.Recompute(context.Background(), "b1")
		assert.ErrorIs(t, err, apperr.ErrInternal)
	})
}

type failingLocker struct{ err error }

func (f failingLocker) Lock(context.Context, string) (func(), error) { return nil, f.err }

func TestAggregator_LockFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	agg := NewAggregator(NewMockReviewLister(ctrl), NewMockAggregateWriter(ctrl), failingLocker{err: context.Canceled}, zap.NewNop())

	_, err := agg.Recompute(context.Background(), "b1")
	assert.ErrorIs(t, err, apperr.ErrInternal)
}

// memStore is a tiny in-memory stand-in used to check that concurrent
// recomputes for one book never interleave their read and write.
type memStore struct {
	mu      sync.Mutex
	reviews []entity.Review
	avg     float64
	count   int
	active  int
	overlap bool
}

func (s *memStore) ListByBook(context.Context, string) ([]entity.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active++
	if s.active > 1 {
		s.overlap = true
	}
	return append([]entity.Review(nil), s.reviews...), nil
}

func (s *memStore) UpdateAggregate(_ context.Context, _ string, avg float64, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avg, s.count = avg, count
	s.active--
	return nil
}

func (s *memStore) add(r entity.Review) {
	s.mu.Lock()
	s.reviews = append(s.reviews, r)
	s.mu.Unlock()
}

func TestAggregator_ConcurrentRecomputesConverge(t *testing.T) {
	store := &memStore{}
	agg := NewAggregator(store, store, NewKeyedMutex(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			store.add(entity.Review{Rating: rating})
			_, err := agg.Recompute(context.Background(), "b1")
			assert.NoError(t, err)
		}(i%5 + 1)
	}
	wg.Wait()

	assert.False(t, store.overlap)
	assert.Equal(t, 10, store.count)
	assert.Equal(t, 3.0, store.avg)
}
