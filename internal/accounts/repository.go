package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marquee-cms/marquee/internal/authz"
	"github.com/marquee-cms/marquee/internal/platform/db"
	"github.com/marquee-cms/marquee/internal/shared"
)

// RepositoryPort defines data access methods for staff accounts.
type RepositoryPort interface {
	GetAccount(ctx context.Context, id int64) (*Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	CreateAccount(ctx context.Context, acc *Account, passwordHash string) (int64, error)
	UpdateRole(ctx context.Context, id int64, role authz.Role) error
	UpdateOverrides(ctx context.Context, id int64, overrides []string) error
	UpdateActive(ctx context.Context, id int64, active bool) error
	ResetLock(ctx context.Context, id int64) error
	DeleteAccount(ctx context.Context, id int64) error
}

const accountColumns = `id, username, email, full_name, role, permissions, department, phone,
	is_active, login_attempts, locked_until, last_login, created_at, updated_at`

// Repository provides PostgreSQL backed persistence over admin_users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetAccount fetches a single account by id.
func (r *Repository) GetAccount(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM admin_users WHERE id = $1`, id)
	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return acc, nil
}

// ListAccounts returns all accounts ordered by role then name.
func (r *Repository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM admin_users ORDER BY role, full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount inserts a new account and returns its id.
func (r *Repository) CreateAccount(ctx context.Context, acc *Account, passwordHash string) (int64, error) {
	overrides, err := marshalOverrides(acc.Overrides)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.pool.QueryRow(ctx, `INSERT INTO admin_users
		(username, email, full_name, password_hash, role, permissions, department, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id`,
		acc.Username, acc.Email, acc.FullName, passwordHash, string(acc.Role), overrides,
		acc.Department, acc.Phone, acc.IsActive,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// UpdateRole replaces the account's role assignment.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role authz.Role) error {
	return r.execOne(ctx, `UPDATE admin_users SET role = $2, updated_at = NOW() WHERE id = $1`, id, string(role))
}

// UpdateOverrides replaces the override permission set wholesale.
func (r *Repository) UpdateOverrides(ctx context.Context, id int64, overrides []string) error {
	payload, err := marshalOverrides(overrides)
	if err != nil {
		return err
	}
	return r.execOne(ctx, `UPDATE admin_users SET permissions = $2, updated_at = NOW() WHERE id = $1`, id, payload)
}

// UpdateActive toggles the active flag.
func (r *Repository) UpdateActive(ctx context.Context, id int64, active bool) error {
	return r.execOne(ctx, `UPDATE admin_users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
}

// ResetLock clears the lockout state.
func (r *Repository) ResetLock(ctx context.Context, id int64) error {
	return r.execOne(ctx, `UPDATE admin_users SET login_attempts = 0, locked_until = NULL, updated_at = NOW() WHERE id = $1`, id)
}

// DeleteAccount removes the account together with its login sessions.
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM admin_sessions WHERE user_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// PrincipalByID loads the authorization view of an account. Always a fresh
// read; grant decisions must reflect current stored state.
func (r *Repository) PrincipalByID(ctx context.Context, id int64) (*authz.Principal, error) {
	var (
		role        string
		overrides   []byte
		active      bool
		lockedUntil *time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT role, permissions, is_active, locked_until FROM admin_users WHERE id = $1`, id,
	).Scan(&role, &overrides, &active, &lockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	principal := &authz.Principal{
		ID:        id,
		Role:      authz.Role(role),
		Overrides: unmarshalOverrides(overrides),
		Active:    active,
	}
	if lockedUntil != nil {
		principal.LockedUntil = *lockedUntil
	}
	return principal, nil
}

func (r *Repository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*Account, error) {
	var (
		acc         Account
		role        string
		overrides   []byte
		lockedUntil *time.Time
		lastLogin   *time.Time
	)
	if err := row.Scan(
		&acc.ID, &acc.Username, &acc.Email, &acc.FullName, &role, &overrides,
		&acc.Department, &acc.Phone, &acc.IsActive, &acc.LoginAttempts,
		&lockedUntil, &lastLogin, &acc.CreatedAt, &acc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	acc.Role = authz.Role(role)
	acc.Overrides = unmarshalOverrides(overrides)
	if lockedUntil != nil {
		acc.LockedUntil = *lockedUntil
	}
	if lastLogin != nil {
		acc.LastLogin = *lastLogin
	}
	return &acc, nil
}

func marshalOverrides(overrides []string) ([]byte, error) {
	if len(overrides) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(overrides)
}

func unmarshalOverrides(payload []byte) []string {
	if len(payload) == 0 {
		return nil
	}
	var overrides []string
	if err := json.Unmarshal(payload, &overrides); err != nil {
		// A malformed override column behaves as no overrides; the role grant
		// still applies.
		return nil
	}
	return overrides
}

var _ RepositoryPort = (*Repository)(nil)
var _ authz.PrincipalSource = (*Repository)(nil)
