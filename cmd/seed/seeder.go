package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"bookreview/internal/apperr"
	"bookreview/internal/book"
	"bookreview/internal/entity"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/review"
	"bookreview/internal/user"

	"go.uber.org/zap"
)

const seedPassword = "Seed!Pass123"

var (
	genres = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	words  = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	authors  = []string{"Ada Lane", "Bram Holt", "Cora Vance", "Dev Patel", "Elena Ruiz", "Farid Haddad", "Grace Okafor", "Hugo Berg"}
	comments = []string{"", "Loved it.", "Slow start, strong finish.", "Not for me.", "Would read again.", "Overrated."}
)

type counts struct {
	users      int
	books      int
	reviews    int
	maxReviews int
}

type seeder struct {
	users   *user.Service
	books   *book.Service
	reviews *review.Service
	rng     *rand.Rand
	log     *zap.Logger
}

func (s *seeder) seed(ctx context.Context, c counts) (counts, error) {
	var res counts
	if c.users <= 0 {
		return res, errors.New("at least one user is required")
	}

	hashed, err := crypto.HashPassword(seedPassword)
	if err != nil {
		return res, fmt.Errorf("hash seed password: %w", err)
	}

	userIDs := make([]string, 0, c.users)
	for i := 0; i < c.users; i++ {
		u, err := s.users.Register(ctx, fmt.Sprintf("reader%d@example.com", i+1), fmt.Sprintf("reader%d", i+1), hashed)
		if err != nil {
			return res, fmt.Errorf("register user %d: %w", i+1, err)
		}
		userIDs = append(userIDs, u.ID)
	}
	res.users = len(userIDs)

	for i := 0; i < c.books; i++ {
		b, err := s.books.AddBook(ctx, book.AddBookInput{
			Title:           fmt.Sprintf("%s of %s %d", s.pick(words), s.pick(words), i+1),
			Author:          s.pick(authors),
			Genre:           s.pick(genres),
			PublicationYear: 1950 + s.rng.Intn(75),
			OwnerID:         userIDs[s.rng.Intn(len(userIDs))],
		})
		if err != nil {
			return res, fmt.Errorf("add book %d: %w", i+1, err)
		}
		res.books++

		n, err := s.reviewBook(ctx, b, userIDs, c.maxReviews)
		if err != nil {
			return res, err
		}
		res.reviews += n

		if (i+1)%50 == 0 {
			s.log.Info("seed progress", zap.Int("books", i+1), zap.Int("of", c.books))
		}
	}
	return res, nil
}

// reviewBook adds up to limit reviews from distinct users.
func (s *seeder) reviewBook(ctx context.Context, b entity.Book, userIDs []string, limit int) (int, error) {
	if limit > len(userIDs) {
		limit = len(userIDs)
	}
	if limit <= 0 {
		return 0, nil
	}
	n := s.rng.Intn(limit + 1)
	added := 0
	for _, idx := range s.rng.Perm(len(userIDs))[:n] {
		_, err := s.reviews.AddReview(ctx, b.ID, userIDs[idx], entity.MinRating+s.rng.Intn(entity.MaxRating), s.pick(comments))
		if errors.Is(err, apperr.ErrConflict) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("review book %s: %w", b.ID, err)
		}
		added++
	}
	return added, nil
}

func (s *seeder) pick(from []string) string {
	return from[s.rng.Intn(len(from))]
}
