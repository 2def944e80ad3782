package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/credisphere/credisphere/internal/jobs"
)

type execRecorder struct {
	sql  string
	args []any
	tag  pgconn.CommandTag
	err  error
}

func (e *execRecorder) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.sql, e.args = sql, args
	return e.tag, e.err
}

func (e *execRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (e *execRecorder) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestSessionsPruneDeletesExpiredAndRevoked(t *testing.T) {
	conn := &execRecorder{tag: pgconn.NewCommandTag("DELETE 3")}
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	job := NewSessionsPruneJob(conn, nil, metrics)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job.clock = func() time.Time { return now }

	task, err := NewSessionsPruneTask(time.Hour)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Contains(t, conn.sql, "DELETE FROM api_sessions")
	require.Len(t, conn.args, 2)
	assert.Equal(t, now, conn.args[0])
	assert.Equal(t, now.Add(-time.Hour), conn.args[1])

	families, err := registry.Gather()
	require.NoError(t, err)
	var pruned float64
	for _, mf := range families {
		if mf.GetName() == "credisphere_sessions_pruned_total" {
			pruned = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(3), pruned)
}

func TestSessionsPruneRejectsBadPayload(t *testing.T) {
	job := NewSessionsPruneJob(&execRecorder{}, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskSessionsPrune, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSessionsPruneReportsDatabaseErrors(t *testing.T) {
	job := NewSessionsPruneJob(&execRecorder{err: errors.New("conn reset")}, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskSessionsPrune, nil))
	assert.ErrorContains(t, err, "conn reset")
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		pending   int
	}{
		{"no queue configured", nil, http.StatusOK, 0},
		{"queue reachable", fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4}}, http.StatusOK, 4},
		{"queue down", fakeInspector{err: errors.New("redis down")}, http.StatusServiceUnavailable, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Route("/jobs", NewHandler(tc.inspector, nil).MountRoutes)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
			require.Equal(t, tc.status, rec.Code)
			if tc.status != http.StatusOK {
				return
			}
			var body queueHealth
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.pending, body.Pending)
		})
	}
}

func TestNewWorkerValidatesConfig(t *testing.T) {
	noop := func(context.Context, *asynq.Task) error { return nil }
	redis := asynq.RedisClientOpt{Addr: "127.0.0.1:0"}

	_, err := NewWorker(WorkerConfig{RedisOpts: redis})
	assert.Error(t, err)

	_, err = NewWorker(WorkerConfig{RedisOpts: redis, Handlers: []TaskHandler{{Type: TaskSessionsPrune}}})
	assert.Error(t, err)

	task, err := NewSessionsPruneTask(time.Hour)
	require.NoError(t, err)
	_, err = NewWorker(WorkerConfig{
		RedisOpts: redis,
		Handlers:  []TaskHandler{{Type: TaskSessionsPrune, Handler: noop}},
		Cron:      []CronRegistration{{Spec: "not a cron", Task: task}},
	})
	assert.ErrorContains(t, err, "register cron")

	w, err := NewWorker(WorkerConfig{
		RedisOpts: redis,
		Handlers:  []TaskHandler{{Type: TaskSessionsPrune, Handler: noop}},
		Cron:      []CronRegistration{{Spec: "@every 15m", Task: task}},
	})
	require.NoError(t, err)
	assert.NotNil(t, w.scheduler)
}
