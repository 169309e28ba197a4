// Package mail defines the outbound email capability used by the credential
// flows. Delivery is fire-and-forget from the flows' perspective: a failed
// send is the sender's problem and never rolls back an issued token.
package mail

import (
	"context"
	"log/slog"
)

// Mailer delivers account emails to downstream systems.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, url, name string) error
	SendPasswordResetEmail(ctx context.Context, to, url, name string) error
}

// LogMailer writes emails to the structured logger instead of sending them.
// It is the delivery mechanism in development.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a logging mailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendVerificationEmail logs the verification link.
func (m *LogMailer) SendVerificationEmail(_ context.Context, to, url, name string) error {
	if m == nil || m.logger == nil {
		return nil
	}
	m.logger.Info("verification email", "to", to, "name", name, "url", url)
	return nil
}

// SendPasswordResetEmail logs the reset link.
func (m *LogMailer) SendPasswordResetEmail(_ context.Context, to, url, name string) error {
	if m == nil || m.logger == nil {
		return nil
	}
	m.logger.Info("password reset email", "to", to, "name", name, "url", url)
	return nil
}
