// Package credential issues and validates compact signed claim sets: session
// tokens and purpose-scoped email-verification tokens. Credentials are
// self-contained; validity is decided by signature and expiry alone.
package credential

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose scopes a signed credential to exactly one flow. Validation rejects
// a purpose mismatch even when the signature checks out.
type Purpose string

const (
	PurposeSession     Purpose = "session"
	PurposeEmailVerify Purpose = "email_verification"
)

var (
	// ErrInvalidSignature covers forged, malformed and purpose-mismatched
	// credentials. Expiry is deliberately not part of it.
	ErrInvalidSignature = errors.New("invalid credential")

	// ErrUnconfigured indicates the signer was built without a secret.
	ErrUnconfigured = errors.New("credential signer is not configured")
)

// Claims is the signed claim set. Role is only present on session tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email   string  `json:"email"`
	Role    string  `json:"role,omitempty"`
	Purpose Purpose `json:"purpose"`
}

// UserID parses the credential subject.
func (c Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Identity names the subject a credential is issued for.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Validation is the outcome of a successful signature check. Expired
// credentials still carry their decoded claims so callers can offer a
// "request a new link" path without a second lookup.
type Validation struct {
	Claims  Claims
	Expired bool
}

// Signer signs and validates credentials with a symmetric HMAC key.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer from the shared secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Issue signs a claim set for id scoped to purpose, expiring after ttl.
func (s *Signer) Issue(id Identity, purpose Purpose, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrUnconfigured
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:   id.Email,
		Purpose: purpose,
	}
	if purpose == PurposeSession {
		claims.Role = id.Role
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate checks the signature and purpose of tokenString. A credential past
// its expiry is reported with Expired=true together with its decoded claims;
// every other failure is ErrInvalidSignature.
func (s *Signer) Validate(tokenString string, purpose Purpose) (Validation, error) {
	if len(s.secret) == 0 {
		return Validation{}, ErrUnconfigured
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return s.secret, nil
	})

	expired := false
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		expired = true
	default:
		return Validation{}, ErrInvalidSignature
	}

	if claims.Purpose != purpose {
		return Validation{}, ErrInvalidSignature
	}

	return Validation{Claims: *claims, Expired: expired}, nil
}
