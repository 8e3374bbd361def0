package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"
	"bookreview/internal/platform/database"

	"github.com/jackc/pgx/v5"
)

const bookColumns = `id, title, author, genre, publication_year, owner_id,
		       average_rating, review_count, created_at, updated_at`

type PostgresRepo struct {
	db      database.DBTX
	timeout time.Duration
}

func NewPostgresRepo(db database.DBTX, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanBook(row pgx.Row, b *entity.Book) error {
	return row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Genre, &b.PublicationYear, &b.OwnerID,
		&b.AverageRating, &b.ReviewCount, &b.CreatedAt, &b.UpdatedAt,
	)
}

func (r *PostgresRepo) findOne(ctx context.Context, query string, args ...any) (entity.Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var b entity.Book
	if err := scanBook(r.db.QueryRow(timeoutCtx, query, args...), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Book{}, apperr.NotFound("Book not found")
		}
		return entity.Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (entity.Book, error) {
	return r.findOne(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
}

func (r *PostgresRepo) FindByTitleAuthor(ctx context.Context, title, author string) (entity.Book, error) {
	return r.findOne(ctx, `SELECT `+bookColumns+` FROM books WHERE title = $1 AND author = $2 LIMIT 1`, title, author)
}

func (r *PostgresRepo) Insert(ctx context.Context, b *entity.Book) error {
	const query = `
		INSERT INTO books (title, author, genre, publication_year, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, average_rating, review_count, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(timeoutCtx, query, b.Title, b.Author, b.Genre, b.PublicationYear, b.OwnerID).
		Scan(&b.ID, &b.AverageRating, &b.ReviewCount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Book with this title and author already exists")
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) UpdateAggregate(ctx context.Context, id string, averageRating float64, reviewCount int) error {
	const query = `
		UPDATE books
		SET average_rating = $2, review_count = $3, updated_at = NOW()
		WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, query, id, averageRating, reviewCount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Book not found")
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, q entity.BookQuery) ([]entity.Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Author != "" {
		clauses = append(clauses, fmt.Sprintf("author ILIKE $%d", argn))
		args = append(args, database.ContainsPattern(q.Author))
		argn++
	}
	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("genre ILIKE $%d", argn))
		args = append(args, database.ContainsPattern(q.Genre))
		argn++
	}
	where := "WHERE " + strings.Join(clauses, " AND ")

	var total int
	countCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(countCtx, "SELECT COUNT(*) FROM books "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		bookColumns, where, argn, argn+1)

	pageArgs := append([]any{}, args...)
	pageArgs = append(pageArgs, q.Limit, q.Offset)
	books, err := r.queryBooks(ctx, dataSQL, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *PostgresRepo) Search(ctx context.Context, q string, limit int) ([]entity.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE title ILIKE $1 OR author ILIKE $1
		ORDER BY title ASC
		LIMIT $2`
	return r.queryBooks(ctx, query, database.ContainsPattern(q), limit)
}

func (r *PostgresRepo) queryBooks(ctx context.Context, query string, args ...any) ([]entity.Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Book{}
	for rows.Next() {
		var b entity.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
