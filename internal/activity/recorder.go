package activity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder appends entries to the activity log.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// PGRecorder writes records into admin_activity_log.
type PGRecorder struct {
	pool *pgxpool.Pool
}

// NewPGRecorder returns a new PGRecorder.
func NewPGRecorder(pool *pgxpool.Pool) *PGRecorder {
	return &PGRecorder{pool: pool}
}

// Record persists the log entry.
func (r *PGRecorder) Record(ctx context.Context, entry Entry) error {
	if r == nil {
		return errors.New("activity recorder not initialised")
	}
	if entry.ActorID == 0 || entry.Action == "" {
		return errors.New("activity entry requires actor and action")
	}
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	var targetID any
	if entry.TargetID != 0 {
		targetID = entry.TargetID
	}
	var targetType any
	if entry.TargetType != "" {
		targetType = entry.TargetType
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO admin_activity_log
		(user_id, action, target_type, target_id, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		entry.ActorID, entry.Action, targetType, targetID, detailsJSON, entry.IP, entry.UserAgent)
	return err
}

// Sink wraps a Recorder with best-effort semantics: a failed append is logged
// and dropped, never surfaced to the caller. A missing activity record is an
// observability gap, not a security event.
type Sink struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewSink builds a best-effort sink over the recorder.
func NewSink(recorder Recorder, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{recorder: recorder, logger: logger}
}

// Record appends the entry, swallowing failures.
func (s *Sink) Record(ctx context.Context, entry Entry) {
	if s == nil || s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("activity record failed",
			slog.String("action", entry.Action),
			slog.Int64("actor_id", entry.ActorID),
			slog.Any("error", err))
	}
}
