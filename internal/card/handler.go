package card

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cardfile/cardfile/internal/token"
)

// Handler exposes the card endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the card handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func viewerFrom(c *fiber.Ctx) (Viewer, error) {
	raw, _ := c.Locals("user_id").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return Viewer{}, fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	role, _ := c.Locals("role").(string)
	return Viewer{UserID: id, Admin: role == "ADMIN"}, nil
}

func cardID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(http.StatusBadRequest, "invalid card id")
	}
	return id, nil
}

func cardJSON(c Card) fiber.Map {
	m := fiber.Map{
		"id":          c.ID,
		"owner_id":    c.OwnerID,
		"label":       c.Label,
		"full_name":   c.FullName,
		"card_number": c.CardNumber,
		"created_at":  c.CreatedAt,
		"updated_at":  c.UpdatedAt,
	}
	if c.ImageKey != "" {
		m["has_image"] = true
	}
	return m
}

func mapCardError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrStorageUnconfigured):
		return fiber.NewError(http.StatusServiceUnavailable, ErrStorageUnconfigured.Error())
	case errors.Is(err, errFullNameRequired):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, token.ErrTokenInvalid):
		return fiber.NewError(http.StatusGone, token.ErrTokenInvalid.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "card operation failed")
	}
}

type cardRequest struct {
	Label      string `json:"label"`
	FullName   string `json:"full_name"`
	CardNumber string `json:"card_number"`
}

// Create stores a new card for the session user.
func (h *Handler) Create(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return err
	}
	var req cardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	created, err := h.svc.Create(c.UserContext(), viewer.UserID, CreateInput{
		Label:      req.Label,
		FullName:   req.FullName,
		CardNumber: req.CardNumber,
	})
	if err != nil {
		return mapCardError(err)
	}
	return c.Status(http.StatusCreated).JSON(cardJSON(created))
}

// List returns the session user's cards.
func (h *Handler) List(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return err
	}
	cards, err := h.svc.List(c.UserContext(), viewer)
	if err != nil {
		return mapCardError(err)
	}
	out := make([]fiber.Map, 0, len(cards))
	for _, card := range cards {
		out = append(out, cardJSON(card))
	}
	return c.JSON(fiber.Map{"cards": out})
}

// ListByOwner returns another user's cards; routes gate it to admins.
func (h *Handler) ListByOwner(c *fiber.Ctx) error {
	ownerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid user id")
	}
	cards, err := h.svc.ListByOwner(c.UserContext(), ownerID)
	if err != nil {
		return mapCardError(err)
	}
	out := make([]fiber.Map, 0, len(cards))
	for _, card := range cards {
		out = append(out, cardJSON(card))
	}
	return c.JSON(fiber.Map{"cards": out})
}

// Get returns one card.
func (h *Handler) Get(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return err
	}
	id, err := cardID(c)
	if err != nil {
		return err
	}
	card, err := h.svc.Get(c.UserContext(), id, viewer)
	if err != nil {
		return mapCardError(err)
	}
	return c.JSON(cardJSON(card))
}

type cardUpdateRequest struct {
	Label      *string `json:"label"`
	FullName   *string `json:"full_name"`
	CardNumber *string `json:"card_number"`
}

// Update applies partial edits.
func (h *Handler) Update(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return err
	}
	id, err := cardID(c)
	if err != nil {
		return err
	}
	var req cardUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.svc.Update(c.UserContext(), id, viewer, UpdateInput{
		Label:      req.Label,
		FullName:   req.FullName,
		CardNumber: req.CardNumber,
	})
	if err != nil {
		return mapCardError(err)
	}
	return c.JSON(cardJSON(updated))
}

// Delete removes a card.
func (h *Handler) Delete(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return err
	}
	id, err := cardID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), id, viewer); err != nil {
		return mapCardError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// UploadImage stores the request body as the card image.
func (h *Handler) UploadImage(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return err
	}
	id, err := cardID(c)
	if err != nil {
		return err
	}

	body := c.Body()
	contentType := c.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	card, err := h.svc.AttachImage(c.UserContext(), id, viewer, contentType, bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return mapCardError(err)
	}
	return c.JSON(cardJSON(card))
}

// Image streams the card image back.
func (h *Handler) Image(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return err
	}
	id, err := cardID(c)
	if err != nil {
		return err
	}

	body, contentType, err := h.svc.Image(c.UserContext(), id, viewer)
	if err != nil {
		return mapCardError(err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "read image")
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

// IssueVerifyToken mints a verification token for a card.
func (h *Handler) IssueVerifyToken(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return err
	}
	id, err := cardID(c)
	if err != nil {
		return err
	}

	raw, err := h.svc.IssueVerifyToken(c.UserContext(), id, viewer)
	if err != nil {
		return mapCardError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"verify_token": raw})
}

type verifyRequest struct {
	Token string `json:"token"`
}

// Verify redeems a card token; public endpoint.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Token == "" {
		return fiber.NewError(http.StatusBadRequest, "token is required")
	}

	v, err := h.svc.Verify(c.UserContext(), req.Token)
	if err != nil {
		return mapCardError(err)
	}
	return c.JSON(fiber.Map{
		"owner_id":       v.OwnerID,
		"owner_name":     v.OwnerName,
		"owner_email":    v.OwnerEmail,
		"email_verified": v.EmailVerified,
	})
}
