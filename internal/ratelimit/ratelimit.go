// Package ratelimit bounds request rates on sensitive routes with a fixed
// window counter per (client, route) key.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result carries the decision plus the metadata limited routes expose as
// response headers.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, only meaningful on denial
}

// Limiter is the rate limiting contract. Implementations must be safe for
// concurrent use.
type Limiter interface {
	Check(ctx context.Context, key string, window time.Duration, max int) (Result, error)
}

type bucket struct {
	remaining int
	resetAt   time.Time
}

// FixedWindow is a process-local fixed window limiter. Buckets are created
// lazily and live only in memory: a restart degrades to full quota, which is
// an accepted property of this limiter. It is not a distributed limiter; see
// Redis for the shared-counter variant.
type FixedWindow struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewFixedWindow builds an empty process-local limiter.
func NewFixedWindow() *FixedWindow {
	return &FixedWindow{buckets: make(map[string]*bucket), now: time.Now}
}

// Check consumes one request from the key's window and reports the decision.
func (f *FixedWindow) Check(_ context.Context, key string, window time.Duration, max int) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	b, ok := f.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{remaining: max - 1, resetAt: now.Add(window)}
		f.buckets[key] = b
		return Result{Allowed: true, Limit: max, Remaining: b.remaining, ResetAt: b.resetAt}, nil
	}

	if b.remaining > 0 {
		b.remaining--
		return Result{Allowed: true, Limit: max, Remaining: b.remaining, ResetAt: b.resetAt}, nil
	}

	retry := int((b.resetAt.Sub(now) + time.Second - 1) / time.Second)
	if retry < 1 {
		retry = 1
	}
	return Result{Limit: max, Remaining: 0, ResetAt: b.resetAt, RetryAfter: retry}, nil
}
