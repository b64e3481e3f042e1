package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/marquee-cms/marquee/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPurge removes expired rows from admin_sessions.
	TaskSessionsPurge = "sessions:purge"
	// TaskLocksSweep clears login locks whose window has elapsed.
	TaskLocksSweep = "locks:sweep"
)

// NewSessionsPurgeTask constructs a sessions purge task.
func NewSessionsPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionsPurge, nil)
}

// NewLocksSweepTask constructs a lock sweep task.
func NewLocksSweepTask() *asynq.Task {
	return asynq.NewTask(TaskLocksSweep, nil)
}

// NewSessionsPurgeHandler deletes session rows past their expiry.
func NewSessionsPurgeHandler(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskSessionsPurge)
		tag, err := pool.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at < now()`)
		if err != nil {
			return tracker.End(err)
		}
		if n := tag.RowsAffected(); n > 0 {
			metrics.AddSwept(TaskSessionsPurge, n)
			logger.Info("purged expired sessions", slog.Int64("count", n))
		}
		return tracker.End(nil)
	}
}

// NewLocksSweepHandler resets login counters for accounts whose lock expired.
// Login does the same reset lazily on the next attempt, so this only keeps
// reporting queries honest.
func NewLocksSweepHandler(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskLocksSweep)
		tag, err := pool.Exec(ctx, `
			UPDATE admin_users
			SET locked_until = NULL, login_attempts = 0
			WHERE locked_until IS NOT NULL AND locked_until < now()`)
		if err != nil {
			return tracker.End(err)
		}
		if n := tag.RowsAffected(); n > 0 {
			metrics.AddSwept(TaskLocksSweep, n)
			logger.Info("cleared elapsed login locks", slog.Int64("count", n))
		}
		return tracker.End(nil)
	}
}

// DefaultCron returns the standing schedule for maintenance tasks.
func DefaultCron() []CronRegistration {
	return []CronRegistration{
		{Spec: "@hourly", Task: NewSessionsPurgeTask(), Options: []asynq.Option{asynq.Queue(QueueDefault), asynq.Timeout(time.Minute)}},
		{Spec: "*/15 * * * *", Task: NewLocksSweepTask(), Options: []asynq.Option{asynq.Queue(QueueDefault), asynq.Timeout(time.Minute)}},
	}
}
