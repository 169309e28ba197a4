package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRedeemExactlyOnce(t *testing.T) {
	store := NewStore(NewMemoryRepository(), DefaultEntropyBytes)
	ctx := context.Background()
	owner := uuid.New()

	raw, err := store.Issue(ctx, owner, KindReset, 30*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(raw) != DefaultEntropyBytes*2 {
		t.Fatalf("expected %d hex chars, got %d", DefaultEntropyBytes*2, len(raw))
	}

	rec, err := store.Redeem(ctx, raw, KindReset)
	if err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if rec.OwnerID != owner {
		t.Fatalf("expected owner %s, got %s", owner, rec.OwnerID)
	}
	if rec.UsedAt != nil {
		t.Fatal("expected the pre-redemption record, got one already marked used")
	}

	if _, err := store.Redeem(ctx, raw, KindReset); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected second redeem to fail with ErrTokenInvalid, got %v", err)
	}
}

func TestRedeemKindMismatch(t *testing.T) {
	store := NewStore(NewMemoryRepository(), DefaultEntropyBytes)
	ctx := context.Background()

	raw, err := store.Issue(ctx, uuid.New(), KindIDCard, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := store.Redeem(ctx, raw, KindReset); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected kind mismatch to fail, got %v", err)
	}
	if _, err := store.Redeem(ctx, raw, KindIDCard); err != nil {
		t.Fatalf("expected matching kind to redeem, got %v", err)
	}
}

func TestRedeemExpired(t *testing.T) {
	store := NewStore(NewMemoryRepository(), DefaultEntropyBytes)
	ctx := context.Background()

	// ttl in the past simulates the 31st minute of a 30 minute token.
	raw, err := store.Issue(ctx, uuid.New(), KindReset, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := store.Redeem(ctx, raw, KindReset); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired token to fail with ErrTokenInvalid, got %v", err)
	}
}

func TestRedeemUnknownToken(t *testing.T) {
	store := NewStore(NewMemoryRepository(), DefaultEntropyBytes)

	if _, err := store.Redeem(context.Background(), "deadbeef", KindReset); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected unknown token to fail with ErrTokenInvalid, got %v", err)
	}
}

func TestConcurrentRedeemSingleWinner(t *testing.T) {
	store := NewStore(NewMemoryRepository(), DefaultEntropyBytes)
	ctx := context.Background()

	raw, err := store.Issue(ctx, uuid.New(), KindIDCard, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const attempts = 16
	var (
		wg        sync.WaitGroup
		successes int64
		mu        sync.Mutex
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Redeem(ctx, raw, KindIDCard); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("unexpected redeem error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful redemption, got %d", successes)
	}
}

func TestOutstandingTokensAreIndependent(t *testing.T) {
	store := NewStore(NewMemoryRepository(), DefaultEntropyBytes)
	ctx := context.Background()
	owner := uuid.New()

	first, err := store.Issue(ctx, owner, KindIDCard, time.Minute)
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	second, err := store.Issue(ctx, owner, KindIDCard, time.Minute)
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}

	if _, err := store.Redeem(ctx, first, KindIDCard); err != nil {
		t.Fatalf("redeem first: %v", err)
	}
	// Issuing and redeeming one token must not invalidate the other.
	if _, err := store.Redeem(ctx, second, KindIDCard); err != nil {
		t.Fatalf("redeem second: %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	store := NewStore(NewMemoryRepository(), DefaultEntropyBytes)
	ctx := context.Background()
	owner := uuid.New()

	if _, err := store.Issue(ctx, owner, KindReset, -time.Minute); err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	used, err := store.Issue(ctx, owner, KindReset, time.Minute)
	if err != nil {
		t.Fatalf("issue used: %v", err)
	}
	if _, err := store.Redeem(ctx, used, KindReset); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if _, err := store.Issue(ctx, owner, KindReset, time.Minute); err != nil {
		t.Fatalf("issue live: %v", err)
	}

	count, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 purged rows, got %d", count)
	}
}
