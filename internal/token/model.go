// Package token manages opaque single-use tokens: random secrets handed to a
// user exactly once, with only a one-way hash persisted server-side.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind labels what an opaque token is good for.
type Kind string

const (
	KindReset  Kind = "reset"
	KindIDCard Kind = "idcard"
)

// ErrTokenInvalid deliberately collapses absent, already-used and expired into
// one failure so callers cannot learn which condition applied.
var ErrTokenInvalid = errors.New("token is invalid or expired")

// Token is the persisted trace of an opaque token. The raw secret never
// appears here; TokenHash is its SHA-256 digest.
type Token struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Kind      Kind
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Repository persists opaque token records.
type Repository interface {
	Create(ctx context.Context, t Token) error
	// Redeem atomically marks the matching unused, unexpired record as used
	// and returns its pre-redemption state. No eligible record means
	// ErrTokenInvalid. Two concurrent redemptions of the same hash must
	// yield exactly one success.
	Redeem(ctx context.Context, tokenHash string, kind Kind, now time.Time) (Token, error)
	// DeleteExpired removes used and expired records, returning the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
