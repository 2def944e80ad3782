package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/credisphere/credisphere/jobs"
)

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// JobQueue is the operator view of the background job queue.
type JobQueue interface {
	TriggerPrune(ctx context.Context, retainRevoked time.Duration) (*asynq.TaskInfo, error)
	InspectQueue(ctx context.Context) (QueueStats, error)
	Close() error
}

// AsynqQueue talks to the worker queue in Redis directly.
type AsynqQueue struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewAsynqQueue connects to the queue at redisAddr.
func NewAsynqQueue(redisAddr string) *AsynqQueue {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &AsynqQueue{client: jobs.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (q *AsynqQueue) Close() error {
	return errors.Join(q.inspector.Close(), q.client.Close())
}

// TriggerPrune enqueues an immediate sessions prune run.
func (q *AsynqQueue) TriggerPrune(ctx context.Context, retainRevoked time.Duration) (*asynq.TaskInfo, error) {
	return q.client.EnqueueSessionsPrune(ctx, retainRevoked)
}

// InspectQueue reports counters for the default queue.
func (q *AsynqQueue) InspectQueue(ctx context.Context) (QueueStats, error) {
	info, err := q.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

func jobsCmd(opts *Options) *cobra.Command {
	var redisAddr string
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Operate the background job queue",
	}
	cmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", envOr(envRedisAddr, "127.0.0.1:6379"), "Redis address of the job queue. Consumes $"+envRedisAddr)

	queue := func() JobQueue {
		if opts.Jobs != nil {
			return opts.Jobs
		}
		return NewAsynqQueue(redisAddr)
	}

	var retain time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Enqueue an immediate prune of expired and revoked sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := queue()
			defer q.Close()
			info, err := q.TriggerPrune(cmd.Context(), retain)
			if err != nil {
				return fmt.Errorf("enqueue prune: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s as %s on queue %s\n", info.Type, info.ID, info.Queue)
			return err
		},
	}
	prune.Flags().DurationVar(&retain, "retain-revoked", 7*24*time.Hour, "Keep revoked sessions this long for audit")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show queue counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := queue()
			defer q.Close()
			s, err := q.InspectQueue(cmd.Context())
			if err != nil {
				return fmt.Errorf("inspect queue: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
				s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry)
			return err
		},
	}

	cmd.AddCommand(prune, stats)
	return cmd
}
