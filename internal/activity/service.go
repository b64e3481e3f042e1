package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Result bundles a timeline window with paging information.
type Result struct {
	Rows     []Record
	Page     int
	PageSize int
	HasNext  bool
}

// TimelineRepository provides read access to the activity log.
type TimelineRepository interface {
	TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Record, error)
}

// Service coordinates activity timeline reads.
type Service struct {
	repo TimelineRepository
}

// NewService builds a timeline service.
func NewService(repo TimelineRepository) *Service {
	return &Service{repo: repo}
}

// Timeline fetches one page of activity, newest first. It asks for one row
// beyond the page size to detect whether a next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("activity: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize
	rows, err := s.repo.TimelineWindow(ctx, filters, offset, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	return Result{Rows: rows, Page: page, PageSize: pageSize, HasNext: hasNext}, nil
}

// PGTimeline implements TimelineRepository over admin_activity_log.
type PGTimeline struct {
	pool *pgxpool.Pool
}

// NewPGTimeline constructs a PostgreSQL timeline repository.
func NewPGTimeline(pool *pgxpool.Pool) *PGTimeline {
	return &PGTimeline{pool: pool}
}

// TimelineWindow returns a window of activity records with filters applied.
func (r *PGTimeline) TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT l.id, l.user_id, COALESCE(u.full_name, ''), l.action,
			COALESCE(l.target_type, ''), COALESCE(l.target_id, 0), l.details,
			COALESCE(l.ip_address, ''), COALESCE(l.user_agent, ''), l.created_at
		FROM admin_activity_log l
		LEFT JOIN admin_users u ON u.id = l.user_id
		WHERE ($1 = 0 OR l.user_id = $1)
		  AND ($2 = '' OR l.action = $2)
		  AND ($3::timestamptz IS NULL OR l.created_at >= $3)
		  AND ($4::timestamptz IS NULL OR l.created_at <= $4)
		ORDER BY l.created_at DESC, l.id DESC
		OFFSET $5 LIMIT $6`,
		filters.ActorID, filters.Action, nullableTime(filters.From), nullableTime(filters.To), offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			details []byte
		)
		if err := rows.Scan(&rec.ID, &rec.ActorID, &rec.ActorName, &rec.Action,
			&rec.TargetType, &rec.TargetID, &details, &rec.IP, &rec.UserAgent, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &rec.Details)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var _ TimelineRepository = (*PGTimeline)(nil)
