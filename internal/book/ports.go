package book

import (
	"context"

	"bookreview/internal/entity"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository defines the contract for book storage. UpdateAggregate is the
// only write path for AverageRating and ReviewCount.
type Repository interface {
	FindByID(ctx context.Context, id string) (entity.Book, error)
	FindByTitleAuthor(ctx context.Context, title, author string) (entity.Book, error)
	Insert(ctx context.Context, b *entity.Book) error
	UpdateAggregate(ctx context.Context, id string, averageRating float64, reviewCount int) error
	List(ctx context.Context, q entity.BookQuery) ([]entity.Book, int, error)
	Search(ctx context.Context, q string, limit int) ([]entity.Book, error)
}

// ReviewLister reads the reviews shown on a book's detail page.
type ReviewLister interface {
	ListByBook(ctx context.Context, bookID string) ([]entity.Review, error)
}

// UserDirectory resolves display names for user IDs. Unknown IDs are left
// out of the result.
type UserDirectory interface {
	UsernamesByID(ctx context.Context, ids []string) (map[string]string, error)
}
