package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cardfile/cardfile/internal/card"
	"github.com/cardfile/cardfile/internal/middleware"
)

// RegisterCardRoutes wires the session-protected card endpoints.
func RegisterCardRoutes(r fiber.Router, h *card.Handler) {
	group := r.Group("/cards")
	group.Post("", h.Create)
	group.Get("", h.List)
	group.Get("/:id", h.Get)
	group.Patch("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	group.Put("/:id/image", h.UploadImage)
	group.Get("/:id/image", h.Image)
	group.Post("/:id/verify-token", h.IssueVerifyToken)

	r.Get("/users/:id/cards", middleware.RequireAdmin(), h.ListByOwner)
}

// RegisterCardVerifyRoute wires the public, rate-limited redemption endpoint.
func RegisterCardVerifyRoute(r fiber.Router, h *card.Handler, limited func(route string) fiber.Handler) {
	r.Post("/cards/verify", limited("card-verify"), h.Verify)
}
