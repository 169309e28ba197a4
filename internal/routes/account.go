package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cardfile/cardfile/internal/account"
	"github.com/cardfile/cardfile/internal/auth"
)

func sessionUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("user_id").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	return id, nil
}

func userJSON(u account.User) fiber.Map {
	return fiber.Map{
		"user_id":        u.ID,
		"email":          u.Email,
		"name":           u.Name,
		"role":           u.Role,
		"email_verified": u.Verified(),
		"created_at":     u.CreatedAt,
	}
}

// RegisterAccountRoutes wires the session user's profile endpoints.
func RegisterAccountRoutes(r fiber.Router, accounts *account.Service, authSvc *auth.Service) {
	r.Get("/me", func(c *fiber.Ctx) error {
		id, err := sessionUserID(c)
		if err != nil {
			return err
		}
		user, err := accounts.Get(c.UserContext(), id)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(userJSON(user))
	})

	r.Patch("/me", func(c *fiber.Ctx) error {
		id, err := sessionUserID(c)
		if err != nil {
			return err
		}
		var req struct {
			Name  *string `json:"name"`
			Email *string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		user, err := accounts.Get(c.UserContext(), id)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}

		if req.Name != nil {
			user, err = accounts.UpdateProfile(c.UserContext(), id, *req.Name)
			if err != nil {
				return mapAccountError(err)
			}
		}
		if req.Email != nil && account.NormalizeEmail(*req.Email) != user.Email {
			user, err = accounts.ChangeEmail(c.UserContext(), id, *req.Email)
			if err != nil {
				return mapAccountError(err)
			}
			// The new address must be confirmed again.
			if _, err := authSvc.RequestEmailVerification(c.UserContext(), user.Email); err != nil {
				return fiber.NewError(http.StatusInternalServerError, "profile update failed")
			}
		}

		return c.JSON(userJSON(user))
	})

	r.Delete("/me", func(c *fiber.Ctx) error {
		id, err := sessionUserID(c)
		if err != nil {
			return err
		}
		if err := accounts.Delete(c.UserContext(), id); err != nil {
			return mapAccountError(err)
		}
		return c.SendStatus(http.StatusNoContent)
	})
}

func mapAccountError(err error) error {
	switch {
	case errors.Is(err, account.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, account.ErrNotFound.Error())
	case errors.Is(err, account.ErrEmailTaken):
		return fiber.NewError(http.StatusConflict, account.ErrEmailTaken.Error())
	case errors.Is(err, account.ErrInvalidEmail), errors.Is(err, account.ErrWeakPassword):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "account operation failed")
	}
}
