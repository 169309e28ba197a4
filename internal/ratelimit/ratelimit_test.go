package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestFixedWindowQuota(t *testing.T) {
	limiter := NewFixedWindow()
	now := time.Now()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	const max = 5
	window := time.Minute

	for i := 0; i < max; i++ {
		res, err := limiter.Check(ctx, "login:1.2.3.4", window, max)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d within quota was denied", i+1)
		}
		if res.Remaining != max-1-i {
			t.Fatalf("request %d: expected remaining %d, got %d", i+1, max-1-i, res.Remaining)
		}
	}

	res, err := limiter.Check(ctx, "login:1.2.3.4", window, max)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Allowed {
		t.Fatal("6th request within the window must be limited")
	}
	if res.RetryAfter < 1 {
		t.Fatalf("expected retryAfter >= 1, got %d", res.RetryAfter)
	}
	if res.Limit != max || res.Remaining != 0 {
		t.Fatalf("unexpected metadata limit=%d remaining=%d", res.Limit, res.Remaining)
	}
}

func TestFixedWindowReset(t *testing.T) {
	limiter := NewFixedWindow()
	now := time.Now()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	const max = 5
	for i := 0; i < max+1; i++ {
		limiter.Check(ctx, "k", time.Minute, max)
	}

	now = now.Add(time.Minute + time.Second)

	res, err := limiter.Check(ctx, "k", time.Minute, max)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Allowed {
		t.Fatal("expected request after window reset to be allowed")
	}
	if res.Remaining != max-1 {
		t.Fatalf("expected remaining %d after reset, got %d", max-1, res.Remaining)
	}
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	limiter := NewFixedWindow()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Check(ctx, "reset:a", time.Minute, 3)
	}
	if res, _ := limiter.Check(ctx, "reset:a", time.Minute, 3); res.Allowed {
		t.Fatal("expected key a to be exhausted")
	}
	if res, _ := limiter.Check(ctx, "reset:b", time.Minute, 3); !res.Allowed {
		t.Fatal("expected key b to have its own quota")
	}
}

func TestRedisLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedis(client)
	ctx := context.Background()

	const max = 3
	for i := 0; i < max; i++ {
		res, err := limiter.Check(ctx, "login:ip", time.Minute, max)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d within quota was denied", i+1)
		}
	}

	res, err := limiter.Check(ctx, "login:ip", time.Minute, max)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Allowed {
		t.Fatal("expected over-quota request to be limited")
	}
	if res.RetryAfter < 1 {
		t.Fatalf("expected retryAfter >= 1, got %d", res.RetryAfter)
	}

	mr.FastForward(time.Minute + time.Second)

	res, err = limiter.Check(ctx, "login:ip", time.Minute, max)
	if err != nil {
		t.Fatalf("check after window: %v", err)
	}
	if !res.Allowed {
		t.Fatal("expected request after window expiry to be allowed")
	}
}
