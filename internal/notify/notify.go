package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event types pushed to resume owners.
const (
	TypeResumeViewed = "resume.viewed"
)

// Event 是通过 Redis Pub/Sub 转发给前端 WebSocket 的消息。
type Event struct {
	Type       string    `json:"type"`
	ResumeID   uint      `json:"resumeId"`
	Views      int64     `json:"views"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Channel returns the pub/sub channel of a user.
func Channel(userID uint) string {
	return fmt.Sprintf("user_notify:%d", userID)
}

// Publisher publishes owner events on Redis.
type Publisher struct {
	client redis.UniversalClient
}

// NewPublisher wraps a Redis client.
func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{client: client}
}

// Notify publishes event on the owner's channel.
func (p *Publisher) Notify(ctx context.Context, userID uint, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := Channel(userID)
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}
