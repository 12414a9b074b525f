package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter over redis. Without a configured
// client it fails open: single-node setups without redis are not locked out
// of their own auth endpoints.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
	limit  int
}

func NewRateLimiter(client *redis.Client, window time.Duration, limit int) *RateLimiter {
	return &RateLimiter{client: client, window: window, limit: limit}
}

// Allow counts one hit for key and reports whether it is still within the
// window's limit.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if rl.client == nil || rl.limit <= 0 {
		return true, nil
	}

	redisKey := fmt.Sprintf("ratelimit:%s", key)
	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, fmt.Errorf("rate limit incr failed: %w", err)
	}
	if count == 1 {
		// First hit opens the window.
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return true, fmt.Errorf("rate limit expire failed: %w", err)
		}
	}
	return count <= int64(rl.limit), nil
}
