package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/identity"
	applog "marketplace/internal/log"
	"marketplace/internal/services"
)

// RequireUser verifies the identity provider's bearer token, makes sure the
// user row exists and attaches the user to the request.
func RequireUser(v *identity.Verifier, profiles *services.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, err := identity.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return message(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		claims, err := v.Parse(tok)
		if err != nil {
			applog.Security(c, "auth.token.invalid", map[string]any{"reason": err.Error()})
			return message(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		u, err := profiles.Ensure(c.UserContext(), claims.User())
		if err != nil {
			applog.Error(c, "auth.user.upsert", err, map[string]any{"sub": claims.Subject})
			return message(c, fiber.StatusInternalServerError, "Failed to load user")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
