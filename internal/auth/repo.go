package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marquee-cms/marquee/internal/authz"
	"github.com/marquee-cms/marquee/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByLogin(ctx context.Context, login string) (*User, error)
	RecordLoginFailure(ctx context.Context, id int64, attempts int, lockedUntil time.Time) error
	RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByLogin fetches a user by username or email.
func (r *PGRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	var (
		user        User
		role        string
		lockedUntil *time.Time
	)
	err := r.pool.QueryRow(ctx, `SELECT id, username, email, full_name, password_hash, role,
			is_active, login_attempts, locked_until, created_at, updated_at
		FROM admin_users WHERE username = $1 OR email = $1`, login,
	).Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash, &role,
		&user.IsActive, &user.LoginAttempts, &lockedUntil, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.Role = authz.Role(role)
	if lockedUntil != nil {
		user.LockedUntil = *lockedUntil
	}
	return &user, nil
}

// RecordLoginFailure bumps the failed-attempt counter, locking the account
// when lockedUntil is non-zero.
func (r *PGRepository) RecordLoginFailure(ctx context.Context, id int64, attempts int, lockedUntil time.Time) error {
	var locked *time.Time
	if !lockedUntil.IsZero() {
		locked = &lockedUntil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE admin_users SET login_attempts = $2, locked_until = $3 WHERE id = $1`,
		id, attempts, locked)
	return err
}

// RecordLoginSuccess clears the failure state and stamps last_login.
func (r *PGRepository) RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admin_users SET login_attempts = 0, locked_until = NULL, last_login = $2 WHERE id = $1`,
		id, at)
	return err
}

// CreateSession persists a new login session in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO admin_sessions (id, user_id, ip_address, user_agent, created_at, expires_at)
		VALUES ($1, $2, $3, $4, NOW(), $5)`,
		id, userID, ip, ua, expiresAt.UTC())
	return err
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE id = $1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)
