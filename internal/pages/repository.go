package pages

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marquee-cms/marquee/internal/shared"
)

// ErrSlugTaken indicates a slug collision.
var ErrSlugTaken = errors.New("pages: slug already in use")

// RepositoryPort defines data access methods for pages.
type RepositoryPort interface {
	ListPages(ctx context.Context) ([]Page, error)
	GetPage(ctx context.Context, id int64) (*Page, error)
	CreatePage(ctx context.Context, p *Page) (int64, error)
	UpdatePage(ctx context.Context, p *Page) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	DeletePage(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListPages(ctx context.Context) ([]Page, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, slug, title, body, status, created_by, created_at, updated_at
		FROM pages ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Body, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *Repository) GetPage(ctx context.Context, id int64) (*Page, error) {
	var p Page
	err := r.pool.QueryRow(ctx, `SELECT id, slug, title, body, status, created_by, created_at, updated_at
		FROM pages WHERE id = $1`, id).
		Scan(&p.ID, &p.Slug, &p.Title, &p.Body, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreatePage(ctx context.Context, p *Page) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO pages (slug, title, body, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`,
		p.Slug, p.Title, p.Body, p.Status, p.CreatedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrSlugTaken
		}
		return 0, err
	}
	return id, nil
}

func (r *Repository) UpdatePage(ctx context.Context, p *Page) error {
	tag, err := r.pool.Exec(ctx, `UPDATE pages SET slug = $2, title = $3, body = $4, updated_at = NOW()
		WHERE id = $1`, p.ID, p.Slug, p.Title, p.Body)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlugTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE pages SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) DeletePage(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
