package api

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MohdFaizan63/Resume-Builder/internal/api/middleware"
)

const (
	loginRateKeyPrefix = "auth:login:rate:"
	loginLockKeyPrefix = "auth:login:lock:"
	loginFailKeyPrefix = "auth:login:fail:"
)

var (
	errLoginRateLimited = errors.New("login rate limit exceeded")
	errLoginLocked      = errors.New("account temporarily locked")
)

// loginGuard throttles password attempts in Redis.
// Attempts are budgeted per client and email per hour; repeated failures lock the email.
type loginGuard struct {
	redis         redis.UniversalClient
	perHour       int
	lockThreshold int
	lockTTL       time.Duration
}

// admit counts one attempt. Redis outages fail open; the bcrypt check still runs.
func (g *loginGuard) admit(ctx context.Context, clientIP, email string, now time.Time) error {
	bucket := loginRateKeyPrefix + clientIP + ":" + email + ":" + now.UTC().Format("2006010215")
	if count, err := g.incr(ctx, bucket, time.Hour); err == nil && count > int64(g.perHour) {
		return errLoginRateLimited
	}
	if ttl, err := g.redis.TTL(ctx, loginLockKeyPrefix+email).Result(); err == nil && ttl > 0 {
		return errLoginLocked
	}
	return nil
}

// fail records a failed attempt and locks the email once the threshold is reached.
func (g *loginGuard) fail(ctx context.Context, email string) {
	count, err := g.incr(ctx, loginFailKeyPrefix+email, g.lockTTL)
	if err != nil || count < int64(g.lockThreshold) {
		return
	}
	_ = g.redis.Set(ctx, loginLockKeyPrefix+email, "1", g.lockTTL).Err()
}

func (g *loginGuard) reset(ctx context.Context, email string) {
	_ = g.redis.Del(ctx, loginFailKeyPrefix+email).Err()
}

// incr increments key; the first hit starts its expiry window.
func (g *loginGuard) incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, _, err := middleware.IncrWindow(ctx, g.redis, key, window)
	return count, err
}
