// Package card manages ID-card records: CRUD, image storage, and the
// single-use verification tokens third parties redeem to confirm a holder.
package card

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardfile/cardfile/internal/account"
	"github.com/cardfile/cardfile/internal/blob"
	"github.com/cardfile/cardfile/internal/token"
)

var errFullNameRequired = errors.New("full_name is required")

// Service manages card lifecycle and verification.
type Service struct {
	repo      Repository
	users     account.Repository
	tokens    *token.Store
	blobs     blob.Store // nil when object storage is not configured
	verifyTTL time.Duration
}

// NewService creates a card service. blobs may be nil; image operations then
// report ErrStorageUnconfigured.
func NewService(repo Repository, users account.Repository, tokens *token.Store, blobs blob.Store, verifyTTL time.Duration) *Service {
	return &Service{repo: repo, users: users, tokens: tokens, blobs: blobs, verifyTTL: verifyTTL}
}

// CreateInput carries the card fields a holder supplies.
type CreateInput struct {
	Label      string
	FullName   string
	CardNumber string
}

// Create stores a new card for ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (Card, error) {
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return Card{}, errFullNameRequired
	}

	now := time.Now().UTC()
	c := Card{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Label:      strings.TrimSpace(in.Label),
		FullName:   fullName,
		CardNumber: strings.TrimSpace(in.CardNumber),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Card{}, err
	}
	return c, nil
}

// Get fetches a card the viewer is allowed to see.
func (s *Service) Get(ctx context.Context, id uuid.UUID, viewer Viewer) (Card, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Card{}, err
	}
	if !viewer.canSee(c) {
		return Card{}, ErrNotFound
	}
	return c, nil
}

// List returns the viewer's own cards.
func (s *Service) List(ctx context.Context, viewer Viewer) ([]Card, error) {
	return s.repo.ListByOwner(ctx, viewer.UserID)
}

// ListByOwner returns another user's cards; the handler gates it to admins.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Card, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// UpdateInput carries partial card edits; nil fields stay unchanged.
type UpdateInput struct {
	Label      *string
	FullName   *string
	CardNumber *string
}

// Update applies edits to a card the viewer owns.
func (s *Service) Update(ctx context.Context, id uuid.UUID, viewer Viewer, in UpdateInput) (Card, error) {
	c, err := s.Get(ctx, id, viewer)
	if err != nil {
		return Card{}, err
	}

	if in.Label != nil {
		c.Label = strings.TrimSpace(*in.Label)
	}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return Card{}, errFullNameRequired
		}
		c.FullName = name
	}
	if in.CardNumber != nil {
		c.CardNumber = strings.TrimSpace(*in.CardNumber)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return Card{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// Delete removes a card and, best effort, its stored image.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, viewer Viewer) error {
	c, err := s.Get(ctx, id, viewer)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	if c.ImageKey != "" && s.blobs != nil {
		_ = s.blobs.Delete(ctx, c.ImageKey)
	}
	return nil
}

// AttachImage uploads the card image and records its object key.
func (s *Service) AttachImage(ctx context.Context, id uuid.UUID, viewer Viewer, contentType string, r io.Reader, size int64) (Card, error) {
	if s.blobs == nil {
		return Card{}, ErrStorageUnconfigured
	}
	c, err := s.Get(ctx, id, viewer)
	if err != nil {
		return Card{}, err
	}

	key := fmt.Sprintf("cards/%s", c.ID)
	if err := s.blobs.Upload(ctx, key, contentType, r, size); err != nil {
		return Card{}, fmt.Errorf("upload image: %w", err)
	}
	if err := s.repo.SetImageKey(ctx, c.ID, key); err != nil {
		return Card{}, err
	}
	c.ImageKey = key
	return c, nil
}

// Image streams the card's stored image.
func (s *Service) Image(ctx context.Context, id uuid.UUID, viewer Viewer) (io.ReadCloser, string, error) {
	if s.blobs == nil {
		return nil, "", ErrStorageUnconfigured
	}
	c, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, "", err
	}
	if c.ImageKey == "" {
		return nil, "", blob.ErrNotFound
	}
	return s.blobs.Download(ctx, c.ImageKey)
}

// IssueVerifyToken mints a short-lived single-use token scoped to the card's
// owner. A card may have any number of outstanding tokens; redeeming one
// leaves the rest valid.
func (s *Service) IssueVerifyToken(ctx context.Context, cardID uuid.UUID, viewer Viewer) (string, error) {
	c, err := s.Get(ctx, cardID, viewer)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(ctx, c.OwnerID, token.KindIDCard, s.verifyTTL)
}

// Verify redeems a card token and resolves the owner for display.
func (s *Service) Verify(ctx context.Context, rawToken string) (Verification, error) {
	rec, err := s.tokens.Redeem(ctx, rawToken, token.KindIDCard)
	if err != nil {
		return Verification{}, err
	}

	owner, err := s.users.FindByID(ctx, rec.OwnerID)
	if err != nil {
		// Owner deleted between issuance and redemption; the token is
		// burned and the outcome is the generic invalid-token failure.
		return Verification{}, token.ErrTokenInvalid
	}

	return Verification{
		OwnerID:       owner.ID,
		OwnerName:     owner.Name,
		OwnerEmail:    owner.Email,
		EmailVerified: owner.Verified(),
	}, nil
}
