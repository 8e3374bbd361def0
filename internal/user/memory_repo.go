package user

import (
	"context"
	"sync"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"

	"github.com/google/uuid"
)

// MemoryRepo keeps users in process memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]entity.User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]entity.User)}
}

func (r *MemoryRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return apperr.Conflict("Email or username already registered")
		}
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	if u.Role == "" {
		u.Role = RoleUser
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepo) find(match func(entity.User) bool) (entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return entity.User{}, apperr.NotFound("User not found")
}

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email })
}

func (r *MemoryRepo) GetByUsername(_ context.Context, username string) (entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Username == username })
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return entity.User{}, apperr.NotFound("User not found")
	}
	return u, nil
}

func (r *MemoryRepo) UsernamesByID(_ context.Context, ids []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u.Username
		}
	}
	return out, nil
}
