package book

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	SearchLimit      = 10
)

// AddBookInput carries the caller-supplied fields of a new book.
type AddBookInput struct {
	Title           string
	Author          string
	Genre           string
	PublicationYear int
	OwnerID         string
}

// Service provides book-related business logic. It never writes the rating
// aggregate fields.
type Service struct {
	repo    Repository
	reviews ReviewLister
	users   UserDirectory
}

// NewService creates a new book service.
func NewService(repo Repository, reviews ReviewLister, users UserDirectory) *Service {
	return &Service{repo: repo, reviews: reviews, users: users}
}

// AddBook stores a new book with an empty rating. A book with the exact same
// title and author is a conflict.
func (s *Service) AddBook(ctx context.Context, in AddBookInput) (entity.Book, error) {
	_, err := s.repo.FindByTitleAuthor(ctx, in.Title, in.Author)
	switch {
	case err == nil:
		return entity.Book{}, apperr.Conflict("Book with this title and author already exists")
	case !errors.Is(err, apperr.ErrNotFound):
		return entity.Book{}, apperr.Internal("find book by title and author", err)
	}

	b := entity.Book{
		Title:           in.Title,
		Author:          in.Author,
		Genre:           in.Genre,
		PublicationYear: in.PublicationYear,
		OwnerID:         in.OwnerID,
	}
	if err := s.repo.Insert(ctx, &b); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return entity.Book{}, err
		}
		return entity.Book{}, apperr.Internal("insert book", err)
	}
	return b, nil
}

// List returns a page of books, newest first, plus the total match count.
func (s *Service) List(ctx context.Context, q entity.BookQuery) ([]entity.Book, int, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	books, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Internal("list books", err)
	}
	return books, total, nil
}

// Search matches q against title or author, case-insensitively.
func (s *Service) Search(ctx context.Context, q string) ([]entity.Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("Search query is required")
	}
	books, err := s.repo.Search(ctx, q, SearchLimit)
	if err != nil {
		return nil, apperr.Internal("search books", err)
	}
	return books, nil
}

// GetWithReviews returns the book and its reviews, newest first, with
// reviewer and creator usernames filled in.
func (s *Service) GetWithReviews(ctx context.Context, id string) (entity.BookWithReviews, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return entity.BookWithReviews{}, err
		}
		return entity.BookWithReviews{}, apperr.Internal("find book", err)
	}

	reviews, err := s.reviews.ListByBook(ctx, id)
	if err != nil {
		return entity.BookWithReviews{}, apperr.Internal("list book reviews", err)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	if err := s.fillUsernames(ctx, &b, reviews); err != nil {
		return entity.BookWithReviews{}, err
	}
	if reviews == nil {
		reviews = []entity.Review{}
	}
	return entity.BookWithReviews{Book: b, Reviews: reviews}, nil
}

func (s *Service) fillUsernames(ctx context.Context, b *entity.Book, reviews []entity.Review) error {
	if s.users == nil {
		return nil
	}
	ids := make([]string, 0, len(reviews)+1)
	seen := make(map[string]struct{}, len(reviews)+1)
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	add(b.OwnerID)
	for _, r := range reviews {
		add(r.UserID)
	}

	names, err := s.users.UsernamesByID(ctx, ids)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("resolve %d usernames", len(ids)), err)
	}
	b.OwnerUsername = names[b.OwnerID]
	for i := range reviews {
		reviews[i].Username = names[reviews[i].UserID]
	}
	return nil
}
