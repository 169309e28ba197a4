package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultEntropyBytes is the raw token entropy when none is configured.
	DefaultEntropyBytes = 32
	minEntropyBytes     = 24
)

// Store issues and redeems opaque tokens on top of a Repository.
type Store struct {
	repo    Repository
	entropy int
}

// NewStore builds a Store. Entropy below 24 bytes is raised to the default.
func NewStore(repo Repository, entropyBytes int) *Store {
	if entropyBytes < minEntropyBytes {
		entropyBytes = DefaultEntropyBytes
	}
	return &Store{repo: repo, entropy: entropyBytes}
}

// Issue generates a random token for ownerID, persists only its hash, and
// returns the raw secret. The raw value never leaves the caller's hands again.
func (s *Store) Issue(ctx context.Context, ownerID uuid.UUID, kind Kind, ttl time.Duration) (string, error) {
	buf := make([]byte, s.entropy)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	raw := hex.EncodeToString(buf)

	now := time.Now().UTC()
	rec := Token{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Kind:      kind,
		TokenHash: Hash(raw),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}

	return raw, nil
}

// Redeem consumes raw exactly once. The returned record reflects the state
// before consumption, for use in follow-up mutations.
func (s *Store) Redeem(ctx context.Context, raw string, kind Kind) (Token, error) {
	return s.repo.Redeem(ctx, Hash(raw), kind, time.Now().UTC())
}

// PurgeExpired drops used and expired records. Meant for an out-of-band
// maintenance sweep, not for request-path code.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now().UTC())
}

// Hash returns the hex SHA-256 digest stored in place of a raw token.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
