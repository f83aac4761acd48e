package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Task outcomes.
const (
	outcomeOK      = "ok"
	outcomeRetry   = "retry"
	outcomeDropped = "dropped"
)

var (
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "Background tasks handled, by type and outcome.",
		},
		[]string{"task_type", "outcome"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "Background task run time in seconds.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60},
		},
		[]string{"task_type"},
	)

	reconciledUsersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "resume_count_corrections_total",
			Help:      "Users whose stored resume count was corrected by reconciliation.",
		},
	)
)

// AsynqMetricsMiddleware 记录每个任务的耗时与结果。SkipRetry 错误计为 dropped。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			start := time.Now()
			err := next.ProcessTask(ctx, task)
			taskDuration.WithLabelValues(task.Type()).Observe(time.Since(start).Seconds())
			tasksTotal.WithLabelValues(task.Type(), taskOutcome(err)).Inc()
			return err
		})
	}
}

func taskOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, asynq.SkipRetry):
		return outcomeDropped
	default:
		return outcomeRetry
	}
}

// ObserveReconciled counts users whose resume count was corrected.
func ObserveReconciled(n int64) {
	if n > 0 {
		reconciledUsersTotal.Add(float64(n))
	}
}
