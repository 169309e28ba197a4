// Package auth orchestrates the credential flows: login, email verification,
// password reset and ID-card verification tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cardfile/cardfile/internal/account"
	"github.com/cardfile/cardfile/internal/config"
	"github.com/cardfile/cardfile/internal/credential"
	"github.com/cardfile/cardfile/internal/hashing"
	"github.com/cardfile/cardfile/internal/mail"
	"github.com/cardfile/cardfile/internal/token"
)

var (
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike, so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrExpired marks a credential whose signature checked out but whose
	// TTL has passed. Distinct from invalid so the client can offer a
	// "request a new link" path.
	ErrExpired = errors.New("link has expired, request a new one")
)

// VerifyStatus is the outcome of an email confirmation.
type VerifyStatus string

const (
	StatusVerified        VerifyStatus = "verified"
	StatusAlreadyVerified VerifyStatus = "already_verified"
)

// Service runs the four credential flows. It holds no mutable state of its
// own; everything shared lives behind the repositories and the token store.
type Service struct {
	cfg    config.Config
	users  account.Repository
	tokens *token.Store
	hasher *hashing.Hasher
	signer *credential.Signer
	mailer mail.Mailer
	logger *slog.Logger
}

// NewService wires the credential flows.
func NewService(cfg config.Config, users account.Repository, tokens *token.Store,
	hasher *hashing.Hasher, signer *credential.Signer, mailer mail.Mailer, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, users: users, tokens: tokens, hasher: hasher, signer: signer, mailer: mailer, logger: logger}
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresIn int64
	User      account.User
}

// Login verifies the password and issues a session credential.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.FindByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	tok, err := s.signer.Issue(credential.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}, credential.PurposeSession, s.cfg.SessionTTL)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}

	return Session{Token: tok, ExpiresIn: int64(s.cfg.SessionTTL.Seconds()), User: user}, nil
}

// RequestEmailVerification issues a verification credential and hands it to
// the mailer. The response shape is identical whether the account is missing,
// already verified, or eligible. The returned token is non-empty only in dev.
func (s *Service) RequestEmailVerification(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, account.NormalizeEmail(email))
	if err != nil || user.Verified() {
		return "", nil
	}

	tok, err := s.signer.Issue(credential.Identity{
		UserID: user.ID,
		Email:  user.Email,
	}, credential.PurposeEmailVerify, s.cfg.EmailVerifyTTL)
	if err != nil {
		return "", fmt.Errorf("issue verification token: %w", err)
	}

	link := s.cfg.BaseURL + "/api/v1/auth/verify-email/confirm?token=" + url.QueryEscape(tok)
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, link, user.Name); err != nil {
		s.logger.Warn("send verification email", "error", err)
	}

	if s.cfg.IsDev() {
		return tok, nil
	}
	return "", nil
}

// ConfirmEmailVerification consumes a verification credential and marks the
// account verified. Confirming twice is not an error; the second call reports
// StatusAlreadyVerified.
func (s *Service) ConfirmEmailVerification(ctx context.Context, tokenString string) (VerifyStatus, error) {
	v, err := s.signer.Validate(tokenString, credential.PurposeEmailVerify)
	if err != nil {
		return "", err
	}
	if v.Expired {
		return "", ErrExpired
	}

	userID, err := v.Claims.UserID()
	if err != nil {
		return "", credential.ErrInvalidSignature
	}

	verified, err := s.users.MarkEmailVerified(ctx, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return "", credential.ErrInvalidSignature
		}
		return "", err
	}
	if !verified {
		return StatusAlreadyVerified, nil
	}
	return StatusVerified, nil
}

// RequestPasswordReset issues a single-use reset token. It responds the same
// way whether or not the email maps to an account. The returned raw token is
// non-empty only in dev.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		return "", nil
	}

	raw, err := s.tokens.Issue(ctx, user.ID, token.KindReset, s.cfg.PasswordResetTTL)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}

	link := s.cfg.BaseURL + "/reset-password?token=" + url.QueryEscape(raw)
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, link, user.Name); err != nil {
		s.logger.Warn("send password reset email", "error", err)
	}

	if s.cfg.IsDev() {
		return raw, nil
	}
	return "", nil
}

// ResetPassword redeems a reset token and stores the new password hash.
// Redeem and update are two steps: if the update fails the token is already
// burned and the user must request a fresh one. Accepted small window, never
// retried here.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if len(newPassword) < 8 {
		return account.ErrWeakPassword
	}

	rec, err := s.tokens.Redeem(ctx, rawToken, token.KindReset)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, rec.OwnerID, hash); err != nil {
		s.logger.Error("reset token consumed but password update failed", "user_id", rec.OwnerID, "error", err)
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}
