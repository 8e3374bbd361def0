package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPostgresRepo(t *testing.T) (*PostgresRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepo(mock, time.Second), mock
}

func reviewRows(reviews ...entity.Review) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "book_id", "user_id", "rating", "comment", "created_at", "updated_at"})
	for _, r := range reviews {
		rows.AddRow(r.ID, r.BookID, r.UserID, r.Rating, r.Comment, r.CreatedAt, r.UpdatedAt)
	}
	return rows
}

func sampleReview() entity.Review {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return entity.Review{ID: "r1", BookID: "b1", UserID: "u1", Rating: 4, Comment: "solid", CreatedAt: now, UpdatedAt: now}
}

func TestPostgresRepo_Insert(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := setupPostgresRepo(t)
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		rv := entity.Review{BookID: "b1", UserID: "u1", Rating: 4}

		mock.ExpectQuery("INSERT INTO reviews").
			WithArgs("b1", "u1", 4, "").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("r1", now, now))

		require.NoError(t, repo.Insert(context.Background(), &rv))
		assert.Equal(t, "r1", rv.ID)
		assert.Equal(t, now, rv.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is conflict", func(t *testing.T) {
		repo, mock := setupPostgresRepo(t)
		rv := entity.Review{BookID: "b1", UserID: "u1", Rating: 4}

		mock.ExpectQuery("INSERT INTO reviews").
			WithArgs("b1", "u1", 4, "").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_book_user_key"})

		err := repo.Insert(context.Background(), &rv)
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors pass through", func(t *testing.T) {
		repo, mock := setupPostgresRepo(t)
		rv := entity.Review{BookID: "b1", UserID: "u1", Rating: 4}

		mock.ExpectQuery("INSERT INTO reviews").
			WithArgs("b1", "u1", 4, "").
			WillReturnError(errors.New("connection refused"))

		err := repo.Insert(context.Background(), &rv)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrConflict)
	})
}

func TestPostgresRepo_Find(t *testing.T) {
	t.Run("by book and user", func(t *testing.T) {
		repo, mock := setupPostgresRepo(t)
		rv := sampleReview()
		mock.ExpectQuery("FROM reviews WHERE book_id = (.+) AND user_id").
			WithArgs("b1", "u1").
			WillReturnRows(reviewRows(rv))

		got, err := repo.FindByBookAndUser(context.Background(), "b1", "u1")
		require.NoError(t, err)
		assert.Equal(t, rv, got)
	})

	t.Run("by id missing", func(t *testing.T) {
		repo, mock := setupPostgresRepo(t)
		mock.ExpectQuery("FROM reviews WHERE id").
			WithArgs("r9").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(context.Background(), "r9")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestPostgresRepo_Update(t *testing.T) {
	repo, mock := setupPostgresRepo(t)
	rv := sampleReview()
	rv.Rating = 5

	mock.ExpectQuery("UPDATE reviews").
		WithArgs("r1", 5, "").
		WillReturnRows(reviewRows(rv))

	got, err := repo.Update(context.Background(), "r1", entity.ReviewPatch{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "solid", got.Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := setupPostgresRepo(t)
		mock.ExpectExec("DELETE FROM reviews").WithArgs("r1").WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(context.Background(), "r1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already gone", func(t *testing.T) {
		repo, mock := setupPostgresRepo(t)
		mock.ExpectExec("DELETE FROM reviews").WithArgs("r1").WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), "r1"), apperr.ErrNotFound)
	})
}

func TestPostgresRepo_ListByBook(t *testing.T) {
	repo, mock := setupPostgresRepo(t)
	a, b := sampleReview(), sampleReview()
	b.ID, b.UserID, b.Rating = "r2", "u2", 2

	mock.ExpectQuery("FROM reviews WHERE book_id").
		WithArgs("b1").
		WillReturnRows(reviewRows(a, b))

	got, err := repo.ListByBook(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, []entity.Review{a, b}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
