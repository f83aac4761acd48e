package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/MohdFaizan63/Resume-Builder/internal/metrics"
	"github.com/MohdFaizan63/Resume-Builder/internal/service"
	"github.com/MohdFaizan63/Resume-Builder/internal/tasks"
)

// Reconciler recomputes stored resume counts.
type Reconciler interface {
	ReconcileResumeCount(ctx context.Context, userID uint) (int, error)
	ReconcileAll(ctx context.Context) (int64, error)
}

// ReconcileTaskHandler 负责消费简历计数校正任务。
type ReconcileTaskHandler struct {
	accounts Reconciler
	logger   *slog.Logger
}

// NewReconcileTaskHandler 创建任务处理器。
func NewReconcileTaskHandler(accounts Reconciler, logger *slog.Logger) *ReconcileTaskHandler {
	return &ReconcileTaskHandler{accounts: accounts, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *ReconcileTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseReconcilePayload(t)
	if err != nil {
		h.logger.Error("invalid reconcile payload", slog.Any("error", err))
		return errors.Join(err, asynq.SkipRetry)
	}

	log := h.logger.With(slog.String("correlation_id", payload.CorrelationID))

	if payload.UserID == 0 {
		corrected, err := h.accounts.ReconcileAll(ctx)
		if err != nil {
			log.Error("reconcile all resume counts failed", slog.Any("error", err))
			return err
		}
		metrics.ObserveReconciled(corrected)
		log.Info("resume counts reconciled", slog.Int64("corrected_users", corrected))
		return nil
	}

	log = log.With(slog.Uint64("user_id", uint64(payload.UserID)))
	count, err := h.accounts.ReconcileResumeCount(ctx, payload.UserID)
	if errors.Is(err, service.ErrUserNotFound) {
		log.Warn("user not found, skipping task")
		return nil
	}
	if err != nil {
		log.Error("reconcile resume count failed", slog.Any("error", err))
		return err
	}
	log.Info("resume count reconciled", slog.Int("resume_count", count))
	return nil
}
