package card

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound covers both missing cards and cards the viewer may not
	// see; ownership misses are not distinguishable from absence.
	ErrNotFound = errors.New("card not found")

	// ErrStorageUnconfigured is returned by image operations when no object
	// storage is wired.
	ErrStorageUnconfigured = errors.New("image storage is not configured")
)

// Card is an ID-card record owned by a user.
type Card struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Label      string
	FullName   string
	CardNumber string
	ImageKey   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Viewer identifies who is asking. Admins see every card.
type Viewer struct {
	UserID uuid.UUID
	Admin  bool
}

func (v Viewer) canSee(c Card) bool {
	return v.Admin || c.OwnerID == v.UserID
}

// Verification is what a successful card-token redemption resolves to.
type Verification struct {
	OwnerID       uuid.UUID
	OwnerName     string
	OwnerEmail    string
	EmailVerified bool
}
