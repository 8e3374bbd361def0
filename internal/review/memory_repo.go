package review

import (
	"context"
	"sync"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"

	"github.com/google/uuid"
)

// MemoryRepo keeps reviews in process memory. One mutex covers the
// uniqueness check and the insert.
type MemoryRepo struct {
	mu       sync.RWMutex
	byID     map[string]entity.Review
	byAuthor map[bookUser]string
	now      func() time.Time
}

type bookUser struct {
	bookID string
	userID string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:     make(map[string]entity.Review),
		byAuthor: make(map[bookUser]string),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) Insert(_ context.Context, rv *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := bookUser{rv.BookID, rv.UserID}
	if _, ok := r.byAuthor[key]; ok {
		return apperr.Conflict("You have already reviewed this book")
	}
	now := r.now()
	rv.ID = uuid.NewString()
	rv.CreatedAt = now
	rv.UpdatedAt = now
	r.byID[rv.ID] = *rv
	r.byAuthor[key] = rv.ID
	return nil
}

func (r *MemoryRepo) FindByBookAndUser(_ context.Context, bookID, userID string) (entity.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byAuthor[bookUser{bookID, userID}]
	if !ok {
		return entity.Review{}, apperr.NotFound("Review not found")
	}
	return r.byID[id], nil
}

func (r *MemoryRepo) FindByID(_ context.Context, id string) (entity.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.byID[id]
	if !ok {
		return entity.Review{}, apperr.NotFound("Review not found")
	}
	return rv, nil
}

func (r *MemoryRepo) Update(_ context.Context, id string, patch entity.ReviewPatch) (entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.byID[id]
	if !ok {
		return entity.Review{}, apperr.NotFound("Review not found")
	}
	rv = patch.Apply(rv)
	rv.UpdatedAt = r.now()
	r.byID[id] = rv
	return rv, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.byID[id]
	if !ok {
		return apperr.NotFound("Review not found")
	}
	delete(r.byID, id)
	delete(r.byAuthor, bookUser{rv.BookID, rv.UserID})
	return nil
}

func (r *MemoryRepo) ListByBook(_ context.Context, bookID string) ([]entity.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Review
	for _, rv := range r.byID {
		if rv.BookID == bookID {
			out = append(out, rv)
		}
	}
	return out, nil
}
