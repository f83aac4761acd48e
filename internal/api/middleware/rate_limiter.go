package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiterConfig defines a fixed-window limit per client IP.
type RateLimiterConfig struct {
	Prefix      string
	MaxRequests int
	Window      time.Duration
}

// RateLimiter counts requests per client IP in Redis.
type RateLimiter struct {
	redis  redis.UniversalClient
	config RateLimiterConfig
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter(redisClient redis.UniversalClient, config RateLimiterConfig) *RateLimiter {
	if config.Prefix == "" {
		config.Prefix = "ratelimit"
	}
	return &RateLimiter{redis: redisClient, config: config}
}

// Middleware rejects clients above the limit with 429. Redis failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter, err := rl.CheckLimit(c.Request.Context(), c.ClientIP())
		if err != nil {
			LoggerFromContext(c).Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		if !allowed {
			seconds := int(retryAfter.Seconds())
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests, please try again later",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}

// CheckLimit increments the counter of ip and reports whether the request is allowed.
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip string) (bool, time.Duration, error) {
	key := fmt.Sprintf("%s:%s", rl.config.Prefix, ip)

	count, ttl, err := IncrWindow(ctx, rl.redis, key, rl.config.Window)
	if err != nil {
		return false, 0, err
	}
	if count > int64(rl.config.MaxRequests) {
		return false, ttl, nil
	}
	return true, 0, nil
}

// IncrWindow increments a fixed-window counter and returns the count with the
// time left in the window. A counter found without a TTL gets one, so a lost
// EXPIRE never leaves the key counting forever.
func IncrWindow(ctx context.Context, client redis.UniversalClient, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return incr.Val(), 0, err
		}
		remaining = window
	}
	return incr.Val(), remaining, nil
}
