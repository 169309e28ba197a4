package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cardfile/cardfile/internal/credential"
)

// Session validates the bearer token as a session credential and stores the
// subject in request locals. Expired sessions are a plain 401; there is no
// refresh flow.
func Session(signer *credential.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenString := strings.TrimSpace(authz[len("Bearer "):])

		v, err := signer.Validate(tokenString, credential.PurposeSession)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid session")
		}
		if v.Expired {
			return fiber.NewError(http.StatusUnauthorized, "session expired")
		}

		c.Locals("user_id", v.Claims.Subject)
		c.Locals("email", v.Claims.Email)
		c.Locals("role", v.Claims.Role)
		return c.Next()
	}
}

// RequireAdmin gates a route to ADMIN sessions. Must run after Session.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != "ADMIN" {
			return fiber.NewError(http.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}
