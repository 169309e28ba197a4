package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cardfile/cardfile/internal/auth"
)

// RegisterAuthRoutes wires registration and the credential flow endpoints.
// Login, the email-verification request and the password-reset request are
// the abuse-prone routes and sit behind the rate limiter.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, limited func(route string) fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", limited("login"), h.Login)
	group.Post("/verify-email/request", limited("verify-email"), h.RequestEmailVerification)
	group.Post("/verify-email/confirm", h.ConfirmEmailVerification)
	group.Get("/verify-email/confirm", h.ConfirmEmailVerification)
	group.Post("/password-reset/request", limited("password-reset"), h.RequestPasswordReset)
	group.Post("/password-reset/confirm", h.ResetPassword)
}
