package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPrune deletes expired and revoked api_sessions rows.
	TaskSessionsPrune = "sessions:prune"
)

// SessionsPrunePayload configures one prune run. Revoked sessions are kept
// for RetainRevoked before deletion so logouts stay visible in the table.
type SessionsPrunePayload struct {
	RetainRevoked time.Duration `json:"retain_revoked"`
}

// NewSessionsPruneTask constructs an Asynq task for session pruning.
func NewSessionsPruneTask(retainRevoked time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(SessionsPrunePayload{RetainRevoked: retainRevoked})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsPrune, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3), asynq.Unique(time.Minute)), nil
}
