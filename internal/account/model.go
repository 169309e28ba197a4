package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role separates regular users from administrators.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// User represents a registered account. Deletion is soft: a deleted user keeps
// its row but becomes invisible to lookups.
type User struct {
	ID              uuid.UUID
	Email           string
	Name            string
	PasswordHash    string
	Role            Role
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// Verified reports whether the account's email has been confirmed.
func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// NormalizeEmail lowercases and trims an address. All lookups and writes go
// through this so the unique index sees one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
