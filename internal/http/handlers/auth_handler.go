package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	"marketplace/internal/log"
	"marketplace/internal/services"
)

type AuthHandler struct {
	Profiles *services.ProfileService
}

// GET /api/auth/user
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	fresh, err := h.Profiles.Current(c.UserContext(), u.ID)
	if err != nil {
		return fail(c, "user.get", err, msgs{notFound: "User not found", failure: "Failed to fetch user"})
	}
	return c.JSON(fresh)
}

// PATCH /api/auth/user
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch domain.ProfilePatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	updated, err := h.Profiles.Update(c.UserContext(), u.ID, patch)
	if err != nil {
		return fail(c, "user.update", err, msgs{notFound: "User not found", failure: "Failed to update user"})
	}
	log.Audit(c, "user.update", nil)
	return c.JSON(updated)
}
