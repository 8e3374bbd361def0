// Package auth exchanges credentials for bearer tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"
	"bookreview/internal/platform/crypto"
)

// UserFinder looks up accounts by login email.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (entity.User, error)
}

type Service struct {
	secret   string
	tokenTTL time.Duration
	users    UserFinder
}

func NewService(secret string, tokenTTL time.Duration, users UserFinder) *Service {
	return &Service{secret: secret, tokenTTL: tokenTTL, users: users}
}

// Login returns a signed access token and its lifetime in seconds. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, int, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", 0, invalidCredentials()
		}
		return "", 0, apperr.Internal("find user for login", err)
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return "", 0, invalidCredentials()
	}

	token, err := crypto.GenerateToken(s.secret, u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return "", 0, apperr.Internal("sign access token", err)
	}
	return token, int(s.tokenTTL.Seconds()), nil
}

func invalidCredentials() error {
	return apperr.Unauthorized("Invalid email or password")
}
