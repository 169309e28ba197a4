package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardfile/cardfile/internal/hashing"
)

const minPasswordLength = 8

var (
	ErrInvalidEmail = errors.New("email address is invalid")
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

// Service manages account lifecycle: registration, profile edits, soft delete.
type Service struct {
	repo   Repository
	hasher *hashing.Hasher
}

// NewService creates a new account service.
func NewService(repo Repository, hasher *hashing.Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates a USER-role account with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return User{}, err
	}
	if len(in.Password) < minPasswordLength {
		return User{}, ErrWeakPassword
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Get fetches a live user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile changes the display name.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (User, error) {
	if err := s.repo.UpdateName(ctx, id, strings.TrimSpace(name)); err != nil {
		return User{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// ChangeEmail swaps the address. The verification timestamp is cleared so the
// new address has to be confirmed again.
func (s *Service) ChangeEmail(ctx context.Context, id uuid.UUID, email string) (User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return User{}, err
	}
	if err := s.repo.UpdateEmail(ctx, id, email); err != nil {
		return User{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// Delete soft-deletes the account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id, time.Now().UTC())
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	return nil
}
