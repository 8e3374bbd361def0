package user

import (
	"context"
	"errors"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/entity"
	"bookreview/internal/platform/database"

	"github.com/jackc/pgx/v5"
)

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

func (r *PostgresRepo) Create(ctx context.Context, user *entity.User) error {
	const query = `
	INSERT INTO users (email, username, password_hash, role)
	VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'USER'))
	RETURNING id, role, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, user.Email, user.Username, user.Password, user.Role).
		Scan(&user.ID, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Email or username already registered")
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) getOne(ctx context.Context, where string, arg string) (entity.User, error) {
	query := `
	SELECT id, email, username, password_hash, role, created_at, updated_at
	FROM users
	WHERE ` + where + ` = $1
	LIMIT 1
	`
	var user entity.User
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &user.Password, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, apperr.NotFound("User not found")
		}
		return entity.User{}, err
	}
	return user, nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *PostgresRepo) GetByUsername(ctx context.Context, username string) (entity.User, error) {
	return r.getOne(ctx, "username", username)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (entity.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *PostgresRepo) UsernamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, `SELECT id, username FROM users WHERE id = ANY($1::text[]::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, username string
		if err := rows.Scan(&id, &username); err != nil {
			return nil, err
		}
		out[id] = username
	}
	return out, rows.Err()
}
