package user

import (
	"context"
	"errors"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"
)

const RoleUser = "USER"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user. Email and username must both be unused.
func (s *Service) Register(ctx context.Context, email, username, hashedPassword string) (entity.User, error) {
	if err := s.ensureUnused(ctx, s.repo.GetByEmail, email, "Email already registered"); err != nil {
		return entity.User{}, err
	}
	if err := s.ensureUnused(ctx, s.repo.GetByUsername, username, "Username already taken"); err != nil {
		return entity.User{}, err
	}

	newUser := &entity.User{
		Email:    email,
		Username: username,
		Password: hashedPassword,
		Role:     RoleUser,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return entity.User{}, err
		}
		return entity.User{}, apperr.Internal("create user", err)
	}
	return *newUser, nil
}

func (s *Service) ensureUnused(ctx context.Context, lookup func(context.Context, string) (entity.User, error), value, taken string) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return apperr.Conflict(taken)
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	default:
		return apperr.Internal("look up user", err)
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (entity.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// UsernamesByID resolves display names; unknown IDs are omitted.
func (s *Service) UsernamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	return s.repo.UsernamesByID(ctx, ids)
}
