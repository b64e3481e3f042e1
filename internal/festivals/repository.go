package festivals

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marquee-cms/marquee/internal/shared"
)

// RepositoryPort defines data access methods for festivals.
type RepositoryPort interface {
	ListFestivals(ctx context.Context) ([]Festival, error)
	GetFestival(ctx context.Context, id int64) (*Festival, error)
	CreateFestival(ctx context.Context, f *Festival) (int64, error)
	UpdateFestival(ctx context.Context, f *Festival) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	DeleteFestival(ctx context.Context, id int64) error
}

const festivalColumns = `id, name, year, location, description, status, starts_on, ends_on,
	created_by, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListFestivals returns all festivals, newest edition first.
func (r *Repository) ListFestivals(ctx context.Context) ([]Festival, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+festivalColumns+` FROM festivals ORDER BY year DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var festivals []Festival
	for rows.Next() {
		var f Festival
		if err := rows.Scan(&f.ID, &f.Name, &f.Year, &f.Location, &f.Description, &f.Status,
			&f.StartsOn, &f.EndsOn, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		festivals = append(festivals, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return festivals, nil
}

// GetFestival fetches a festival by id.
func (r *Repository) GetFestival(ctx context.Context, id int64) (*Festival, error) {
	var f Festival
	err := r.pool.QueryRow(ctx, `SELECT `+festivalColumns+` FROM festivals WHERE id = $1`, id).
		Scan(&f.ID, &f.Name, &f.Year, &f.Location, &f.Description, &f.Status,
			&f.StartsOn, &f.EndsOn, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// CreateFestival inserts a festival and returns its id.
func (r *Repository) CreateFestival(ctx context.Context, f *Festival) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO festivals
		(name, year, location, description, status, starts_on, ends_on, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()) RETURNING id`,
		f.Name, f.Year, f.Location, f.Description, f.Status, f.StartsOn, f.EndsOn, f.CreatedBy,
	).Scan(&id)
	return id, err
}

// UpdateFestival rewrites the editable fields.
func (r *Repository) UpdateFestival(ctx context.Context, f *Festival) error {
	tag, err := r.pool.Exec(ctx, `UPDATE festivals SET name = $2, year = $3, location = $4,
		description = $5, starts_on = $6, ends_on = $7, updated_at = NOW() WHERE id = $1`,
		f.ID, f.Name, f.Year, f.Location, f.Description, f.StartsOn, f.EndsOn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStatus moves a festival between draft and published.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE festivals SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteFestival removes a festival.
func (r *Repository) DeleteFestival(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM festivals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
