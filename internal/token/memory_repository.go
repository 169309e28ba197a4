package token

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.Mutex
	records map[string]Token
}

// NewMemoryRepository builds an in-memory token store for dev mode and tests.
// The mutex gives Redeem the same atomicity the conditional update provides
// in Postgres.
func NewMemoryRepository() Repository {
	return &memoryRepository{records: make(map[string]Token)}
}

func (r *memoryRepository) Create(_ context.Context, t Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[t.TokenHash] = t
	return nil
}

func (r *memoryRepository) Redeem(_ context.Context, tokenHash string, kind Kind, now time.Time) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[tokenHash]
	if !ok || rec.Kind != kind || rec.UsedAt != nil || !rec.ExpiresAt.After(now) {
		return Token{}, ErrTokenInvalid
	}

	before := rec
	used := now
	rec.UsedAt = &used
	r.records[tokenHash] = rec
	return before, nil
}

func (r *memoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for hash, rec := range r.records {
		if rec.ExpiresAt.Before(now) || rec.UsedAt != nil {
			delete(r.records, hash)
			count++
		}
	}
	return count, nil
}
