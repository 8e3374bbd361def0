package review

import (
	"context"
	"errors"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"
	"bookreview/internal/platform/database"

	"github.com/jackc/pgx/v5"
)

const reviewColumns = `id, book_id, user_id, rating, comment, created_at, updated_at`

// PostgresRepo relies on the reviews_book_user_key unique index for
// one-review-per-user.
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

func scanReview(row pgx.Row, rv *entity.Review) error {
	return row.Scan(&rv.ID, &rv.BookID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
}

func (r *PostgresRepo) findOne(ctx context.Context, query string, args ...any) (entity.Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rv entity.Review
	if err := scanReview(r.db.QueryRow(timeoutCtx, query, args...), &rv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Review{}, apperr.NotFound("Review not found")
		}
		return entity.Review{}, err
	}
	return rv, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, rv *entity.Review) error {
	const query = `
		INSERT INTO reviews (book_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(timeoutCtx, query, rv.BookID, rv.UserID, rv.Rating, rv.Comment).
		Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("You have already reviewed this book")
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) FindByBookAndUser(ctx context.Context, bookID, userID string) (entity.Review, error) {
	return r.findOne(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE book_id = $1 AND user_id = $2`, bookID, userID)
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (entity.Review, error) {
	return r.findOne(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
}

// Update keeps the stored rating when patch.Rating is 0 and the stored
// comment when patch.Comment is empty.
func (r *PostgresRepo) Update(ctx context.Context, id string, patch entity.ReviewPatch) (entity.Review, error) {
	const query = `
		UPDATE reviews
		SET rating = COALESCE(NULLIF($2::int, 0), rating),
		    comment = COALESCE(NULLIF($3::text, ''), comment),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reviewColumns
	return r.findOne(ctx, query, id, patch.Rating, patch.Comment)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Review not found")
	}
	return nil
}

func (r *PostgresRepo) ListByBook(ctx context.Context, bookID string) ([]entity.Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, `SELECT `+reviewColumns+` FROM reviews WHERE book_id = $1`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Review
	for rows.Next() {
		var rv entity.Review
		if err := scanReview(rows, &rv); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
