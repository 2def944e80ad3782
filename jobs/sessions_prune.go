package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/credisphere/credisphere/internal/jobs"
	"github.com/credisphere/credisphere/internal/platform/db"
)

// SessionsPruneJob removes api_sessions rows that can no longer authenticate.
type SessionsPruneJob struct {
	DB      db.DBTX
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewSessionsPruneJob initialises the prune handler.
func NewSessionsPruneJob(conn db.DBTX, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionsPruneJob {
	return &SessionsPruneJob{
		DB:      conn,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one prune run.
func (j *SessionsPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.DB == nil {
		return errors.New("sessions prune: handler not configured")
	}
	var payload SessionsPrunePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("sessions prune: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.RetainRevoked < 0 {
		payload.RetainRevoked = 0
	}

	now := j.clock()
	tag, err := j.DB.Exec(ctx, `
DELETE FROM api_sessions
WHERE expires_at < $1
   OR (revoked_at IS NOT NULL AND revoked_at < $2)`, now, now.Add(-payload.RetainRevoked))
	if err != nil {
		j.logger().Error("prune sessions", slog.Any("error", err))
		return fmt.Errorf("sessions prune: %w", err)
	}
	pruned := tag.RowsAffected()
	j.Metrics.AddPrunedSessions(pruned)
	j.logger().Info("pruned sessions",
		slog.Int64("rows", pruned),
		slog.Duration("retain_revoked", payload.RetainRevoked),
	)
	return nil
}

func (j *SessionsPruneJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
