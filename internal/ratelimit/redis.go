package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "rl:v1:"

// Redis is the shared-counter limiter for horizontally scaled deployments.
// Same contract as FixedWindow, with the window tracked by key TTL.
type Redis struct {
	client *redis.Client
}

// NewRedis builds a limiter on top of an existing Redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Check increments the key's window counter. Errors are returned to the
// caller, which is expected to fail open rather than reject traffic on a
// cache outage.
func (r *Redis) Check(ctx context.Context, key string, window time.Duration, max int) (Result, error) {
	cacheKey := redisKeyPrefix + key

	cnt, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return Result{}, err
	}
	if cnt == 1 {
		if err := r.client.Expire(ctx, cacheKey, window).Err(); err != nil {
			return Result{}, err
		}
	}

	ttl, err := r.client.TTL(ctx, cacheKey).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	resetAt := time.Now().Add(ttl)

	remaining := max - int(cnt)
	if remaining < 0 {
		remaining = 0
	}

	if cnt > int64(max) {
		retry := int((ttl + time.Second - 1) / time.Second)
		if retry < 1 {
			retry = 1
		}
		return Result{Limit: max, Remaining: 0, ResetAt: resetAt, RetryAfter: retry}, nil
	}

	return Result{Allowed: true, Limit: max, Remaining: remaining, ResetAt: resetAt}, nil
}
