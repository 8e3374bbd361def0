package book

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"

	"github.com/google/uuid"
)

// MemoryRepo is a Repository held in process memory. Used by tests and by
// STORE_DRIVER=memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	books map[string]*memBook
	seq   int64
	now   func() time.Time
}

type memBook struct {
	book entity.Book
	seq  int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		books: make(map[string]*memBook),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) FindByID(_ context.Context, id string) (entity.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mb, ok := r.books[id]
	if !ok {
		return entity.Book{}, apperr.NotFound("Book not found")
	}
	return mb.book, nil
}

func (r *MemoryRepo) FindByTitleAuthor(_ context.Context, title, author string) (entity.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if mb := r.findTitleAuthorLocked(title, author); mb != nil {
		return mb.book, nil
	}
	return entity.Book{}, apperr.NotFound("Book not found")
}

func (r *MemoryRepo) findTitleAuthorLocked(title, author string) *memBook {
	for _, mb := range r.books {
		if mb.book.Title == title && mb.book.Author == author {
			return mb
		}
	}
	return nil
}

func (r *MemoryRepo) Insert(_ context.Context, b *entity.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findTitleAuthorLocked(b.Title, b.Author) != nil {
		return apperr.Conflict("Book with this title and author already exists")
	}

	now := r.now()
	b.ID = uuid.NewString()
	b.AverageRating = 0
	b.ReviewCount = 0
	b.CreatedAt = now
	b.UpdatedAt = now
	r.seq++
	r.books[b.ID] = &memBook{book: *b, seq: r.seq}
	return nil
}

func (r *MemoryRepo) UpdateAggregate(_ context.Context, id string, averageRating float64, reviewCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.books[id]
	if !ok {
		return apperr.NotFound("Book not found")
	}
	mb.book.AverageRating = averageRating
	mb.book.ReviewCount = reviewCount
	mb.book.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepo) List(_ context.Context, q entity.BookQuery) ([]entity.Book, int, error) {
	author := strings.ToLower(q.Author)
	genre := strings.ToLower(q.Genre)

	// Rows are copied under the lock so an aggregate write can never be
	// observed half-applied.
	r.mu.RLock()
	matches := make([]memBook, 0, len(r.books))
	for _, mb := range r.books {
		if author != "" && !strings.Contains(strings.ToLower(mb.book.Author), author) {
			continue
		}
		if genre != "" && !strings.Contains(strings.ToLower(mb.book.Genre), genre) {
			continue
		}
		matches = append(matches, *mb)
	}
	r.mu.RUnlock()

	// Newest first; seq breaks ties between equal timestamps.
	sort.Slice(matches, func(i, j int) bool { return matches[i].seq > matches[j].seq })

	total := len(matches)
	out := []entity.Book{}
	for i := q.Offset; i < total && len(out) < q.Limit; i++ {
		out = append(out, matches[i].book)
	}
	return out, total, nil
}

func (r *MemoryRepo) Search(_ context.Context, q string, limit int) ([]entity.Book, error) {
	needle := strings.ToLower(q)

	r.mu.RLock()
	out := []entity.Book{}
	for _, mb := range r.books {
		if strings.Contains(strings.ToLower(mb.book.Title), needle) ||
			strings.Contains(strings.ToLower(mb.book.Author), needle) {
			out = append(out, mb.book)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
