package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cardfile/cardfile/internal/account"
	"github.com/cardfile/cardfile/internal/credential"
	"github.com/cardfile/cardfile/internal/token"
)

// Handler exposes registration and the credential flow endpoints.
type Handler struct {
	accounts *account.Service
	svc      *Service
}

// NewHandler builds the auth handler.
func NewHandler(accounts *account.Service, svc *Service) *Handler {
	return &Handler{accounts: accounts, svc: svc}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates an account and kicks off email verification.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.accounts.Register(c.UserContext(), account.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrEmailTaken):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, account.ErrInvalidEmail), errors.Is(err, account.ErrWeakPassword):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "registration failed")
		}
	}

	devToken, err := h.svc.RequestEmailVerification(c.UserContext(), user.Email)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registration failed")
	}

	body := fiber.Map{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
	}
	if devToken != "" {
		body["verification_token"] = devToken
	}
	return c.Status(http.StatusCreated).JSON(body)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	session, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id":      session.User.ID,
		"email":        session.User.Email,
		"role":         session.User.Role,
		"access_token": session.Token,
		"expires_in":   session.ExpiresIn,
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

// RequestEmailVerification always responds accepted, whether or not the
// address maps to an eligible account.
func (h *Handler) RequestEmailVerification(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	devToken, err := h.svc.RequestEmailVerification(c.UserContext(), req.Email)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "verification request failed")
	}

	body := fiber.Map{"status": "ok"}
	if devToken != "" {
		body["verification_token"] = devToken
	}
	return c.Status(http.StatusAccepted).JSON(body)
}

type confirmRequest struct {
	Token string `json:"token"`
}

// ConfirmEmailVerification consumes a verification token.
func (h *Handler) ConfirmEmailVerification(c *fiber.Ctx) error {
	tok := c.Query("token")
	if tok == "" {
		var req confirmRequest
		if err := c.BodyParser(&req); err == nil {
			tok = req.Token
		}
	}
	if tok == "" {
		return fiber.NewError(http.StatusBadRequest, "token is required")
	}

	status, err := h.svc.ConfirmEmailVerification(c.UserContext(), tok)
	if err != nil {
		return mapFlowError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"status": status})
}

// RequestPasswordReset always responds accepted regardless of account
// existence.
func (h *Handler) RequestPasswordReset(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	devToken, err := h.svc.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "reset request failed")
	}

	body := fiber.Map{"status": "ok"}
	if devToken != "" {
		body["reset_token"] = devToken
	}
	return c.Status(http.StatusAccepted).JSON(body)
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword redeems a reset token and sets the new password.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		if errors.Is(err, account.ErrWeakPassword) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return mapFlowError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "password_updated"})
}

// mapFlowError translates flow sentinels into transport responses. Expired is
// kept distinct from invalid so clients can offer a resend; the opaque-token
// failure is a single 410 on purpose.
func mapFlowError(err error) error {
	switch {
	case errors.Is(err, ErrExpired):
		return fiber.NewError(http.StatusGone, ErrExpired.Error())
	case errors.Is(err, token.ErrTokenInvalid):
		return fiber.NewError(http.StatusGone, token.ErrTokenInvalid.Error())
	case errors.Is(err, credential.ErrInvalidSignature):
		return fiber.NewError(http.StatusUnauthorized, credential.ErrInvalidSignature.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "request failed")
	}
}
