package jobmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMiddlewareCountsOutcomes(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	fail := true
	handler := m.Middleware(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		if fail {
			return errors.New("boom")
		}
		return nil
	}))

	task := asynq.NewTask("sessions:prune", nil)
	assert.Error(t, handler.ProcessTask(context.Background(), task))
	fail = false
	assert.NoError(t, handler.ProcessTask(context.Background(), task))
	assert.NoError(t, handler.ProcessTask(context.Background(), task))

	assert.Equal(t, float64(1), counter(t, registry, "credisphere_jobs_failures_total", map[string]string{"job": "sessions:prune"}))
	assert.Equal(t, float64(2), counter(t, registry, "credisphere_jobs_total", map[string]string{"job": "sessions:prune", "status": "success"}))
	assert.Equal(t, float64(1), counter(t, registry, "credisphere_jobs_total", map[string]string{"job": "sessions:prune", "status": "failure"}))
}

func TestPrunedSessionsIgnoresEmptyRuns(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.AddPrunedSessions(0)
	m.AddPrunedSessions(4)
	assert.Equal(t, float64(4), counter(t, registry, "credisphere_sessions_pruned_total", nil))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	m.Observe("sessions:prune", time.Second, nil)
	m.AddPrunedSessions(3)
	handler := m.Middleware(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return nil }))
	assert.NoError(t, handler.ProcessTask(context.Background(), asynq.NewTask("x", nil)))
}
