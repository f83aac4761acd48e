package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAsynqMetricsMiddleware_Outcomes(t *testing.T) {
	results := []error{nil, errors.New("db down"), fmt.Errorf("bad payload: %w", asynq.SkipRetry)}
	for _, result := range results {
		handler := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
			return result
		}))
		if err := handler.ProcessTask(context.Background(), asynq.NewTask("test:outcome", nil)); !errors.Is(err, result) {
			t.Fatalf("middleware changed the error: %v", err)
		}
	}

	for _, outcome := range []string{outcomeOK, outcomeRetry, outcomeDropped} {
		if got := testutil.ToFloat64(tasksTotal.WithLabelValues("test:outcome", outcome)); got != 1 {
			t.Fatalf("%s = %v, want 1", outcome, got)
		}
	}
}
