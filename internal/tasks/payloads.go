package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeReconcileResumeCount = "account:reconcile_resume_count"
)

// ReconcilePayload selects the accounts to reconcile. UserID 0 means every account.
type ReconcilePayload struct {
	UserID        uint   `json:"user_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewReconcileTask 构造一个简历计数校正任务。
func NewReconcileTask(userID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ReconcilePayload{
		UserID:        userID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal reconcile payload: %w", err)
	}
	return asynq.NewTask(TypeReconcileResumeCount, payload, asynq.MaxRetry(3)), nil
}

// ParseReconcilePayload decodes the payload of a reconcile task.
func ParseReconcilePayload(t *asynq.Task) (ReconcilePayload, error) {
	var payload ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return ReconcilePayload{}, fmt.Errorf("unmarshal reconcile payload: %w", err)
	}
	return payload, nil
}
