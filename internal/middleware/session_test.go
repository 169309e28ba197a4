package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cardfile/cardfile/internal/credential"
)

func newSessionApp(signer *credential.Signer) *fiber.App {
	app := fiber.New()
	app.Get("/me", Session(signer), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("role"),
		})
	})
	app.Get("/admin", Session(signer), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func issueSession(t *testing.T, signer *credential.Signer, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := signer.Issue(credential.Identity{UserID: uuid.New(), Email: "u@example.com", Role: role},
		credential.PurposeSession, ttl)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func TestSessionAcceptsValidToken(t *testing.T) {
	signer := credential.NewSigner("secret")
	app := newSessionApp(signer)

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+issueSession(t, signer, "USER", time.Hour))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSessionRejects(t *testing.T) {
	signer := credential.NewSigner("secret")
	app := newSessionApp(signer)

	cases := map[string]string{
		"missing header": "",
		"garbage token":  "Bearer not-a-token",
		"wrong secret":   "Bearer " + issueSession(t, credential.NewSigner("other"), "USER", time.Hour),
		"expired":        "Bearer " + issueSession(t, signer, "USER", -time.Minute),
	}

	for name, header := range cases {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: app.Test: %v", name, err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.StatusCode)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	signer := credential.NewSigner("secret")
	app := newSessionApp(signer)

	req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+issueSession(t, signer, "USER", time.Hour))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for USER, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+issueSession(t, signer, "ADMIN", time.Hour))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for ADMIN, got %d", resp.StatusCode)
	}
}
