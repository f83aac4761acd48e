package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Notify(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	sub := client.Subscribe(ctx, Channel(5))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	event := Event{Type: TypeResumeViewed, ResumeID: 11, Views: 4, OccurredAt: at}
	require.NoError(t, NewPublisher(client).Notify(ctx, 5, event))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "user_notify:5", msg.Channel)
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, TypeResumeViewed, got.Type)
		assert.Equal(t, uint(11), got.ResumeID)
		assert.Equal(t, int64(4), got.Views)
		assert.True(t, got.OccurredAt.Equal(at))
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestPublisher_NotifyFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	err := NewPublisher(client).Notify(context.Background(), 1, Event{Type: TypeResumeViewed})
	assert.ErrorContains(t, err, "user_notify:1")
}
