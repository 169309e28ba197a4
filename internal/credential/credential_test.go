package credential

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testIdentity() Identity {
	return Identity{UserID: uuid.New(), Email: "user@example.com", Role: "USER"}
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	signer := NewSigner("secret")
	id := testIdentity()

	token, err := signer.Issue(id, PurposeSession, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	v, err := signer.Validate(token, PurposeSession)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if v.Expired {
		t.Fatal("fresh credential reported expired")
	}
	if v.Claims.Email != id.Email {
		t.Fatalf("expected email %s, got %s", id.Email, v.Claims.Email)
	}
	if v.Claims.Role != "USER" {
		t.Fatalf("expected role USER, got %q", v.Claims.Role)
	}
	got, err := v.Claims.UserID()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	if got != id.UserID {
		t.Fatalf("expected subject %s, got %s", id.UserID, got)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewSigner("secret").Issue(testIdentity(), PurposeSession, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewSigner("other").Validate(token, PurposeSession); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestValidateExpiredReturnsClaims(t *testing.T) {
	signer := NewSigner("secret")
	id := testIdentity()

	token, err := signer.Issue(id, PurposeEmailVerify, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	v, err := signer.Validate(token, PurposeEmailVerify)
	if err != nil {
		t.Fatalf("expected expiry to not be a signature failure, got %v", err)
	}
	if !v.Expired {
		t.Fatal("expected Expired=true")
	}
	if v.Claims.Email != id.Email {
		t.Fatalf("expected stale claims to decode, got email %q", v.Claims.Email)
	}
}

func TestValidatePurposeMismatch(t *testing.T) {
	signer := NewSigner("secret")

	token, err := signer.Issue(testIdentity(), PurposeEmailVerify, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := signer.Validate(token, PurposeSession); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected purpose mismatch to fail validation, got %v", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	signer := NewSigner("secret")

	for _, token := range []string{"", "abc", "a.b.c", "!!!.???.###"} {
		if _, err := signer.Validate(token, PurposeSession); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature for %q, got %v", token, err)
		}
	}
}

func TestRoleOmittedOutsideSessions(t *testing.T) {
	signer := NewSigner("secret")

	token, err := signer.Issue(testIdentity(), PurposeEmailVerify, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	v, err := signer.Validate(token, PurposeEmailVerify)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if v.Claims.Role != "" {
		t.Fatalf("expected role to be dropped from verification tokens, got %q", v.Claims.Role)
	}
}

func TestUnconfiguredSigner(t *testing.T) {
	signer := NewSigner("")

	if _, err := signer.Issue(testIdentity(), PurposeSession, time.Hour); !errors.Is(err, ErrUnconfigured) {
		t.Fatalf("expected ErrUnconfigured on issue, got %v", err)
	}
	if _, err := signer.Validate("x.y.z", PurposeSession); !errors.Is(err, ErrUnconfigured) {
		t.Fatalf("expected ErrUnconfigured on validate, got %v", err)
	}
}
