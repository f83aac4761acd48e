package api

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoginGuard(t *testing.T) (*loginGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &loginGuard{redis: client, perHour: 2, lockThreshold: 2, lockTTL: time.Minute}, mr
}

func TestLoginGuard_HourlyBudget(t *testing.T) {
	guard, mr := newLoginGuard(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	require.NoError(t, guard.admit(ctx, "1.2.3.4", "ann@example.com", now))
	require.NoError(t, guard.admit(ctx, "1.2.3.4", "ann@example.com", now))
	assert.ErrorIs(t, guard.admit(ctx, "1.2.3.4", "ann@example.com", now), errLoginRateLimited)

	// other clients and the next hour have their own budget
	assert.NoError(t, guard.admit(ctx, "5.6.7.8", "ann@example.com", now))
	assert.NoError(t, guard.admit(ctx, "1.2.3.4", "ann@example.com", now.Add(time.Hour)))

	key := loginRateKeyPrefix + "1.2.3.4:ann@example.com:2024050110"
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestLoginGuard_LocksAndResets(t *testing.T) {
	guard, mr := newLoginGuard(t)
	ctx := context.Background()
	now := time.Now()

	guard.fail(ctx, "ann@example.com")
	assert.NoError(t, guard.admit(ctx, "ip", "ann@example.com", now))
	guard.reset(ctx, "ann@example.com")
	assert.False(t, mr.Exists(loginFailKeyPrefix+"ann@example.com"))

	guard.fail(ctx, "ann@example.com")
	guard.fail(ctx, "ann@example.com")
	assert.ErrorIs(t, guard.admit(ctx, "other-ip", "ann@example.com", now), errLoginLocked)

	mr.FastForward(time.Minute + time.Second)
	assert.NoError(t, guard.admit(ctx, "third-ip", "ann@example.com", now))
}

func TestLoginGuard_FailsOpenWithoutRedis(t *testing.T) {
	guard, mr := newLoginGuard(t)
	mr.Close()
	assert.NoError(t, guard.admit(context.Background(), "ip", "ann@example.com", time.Now()))
}
