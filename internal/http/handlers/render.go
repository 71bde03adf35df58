package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	applog "marketplace/internal/log"
	"marketplace/internal/repos"
	"marketplace/internal/services"
	"marketplace/internal/validate"
)

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// msgs are the client-facing texts for one route.
type msgs struct {
	notFound string
	failure  string
}

// fail maps a service error onto a status code. Unexpected errors are logged
// and answered with the route's fixed failure text.
func fail(c *fiber.Ctx, action string, err error, m msgs) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		applog.Security(c, "access.denied", map[string]any{"op": action})
		return message(c, fiber.StatusForbidden, "You are not allowed to modify this resource")
	case errors.Is(err, services.ErrProductMissing), errors.Is(err, services.ErrInvalid):
		return message(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, repos.ErrNotFound):
		return message(c, fiber.StatusNotFound, m.notFound)
	case errors.Is(err, repos.ErrConflict):
		return message(c, fiber.StatusConflict, err.Error())
	}
	applog.Error(c, action, err, nil)
	return message(c, fiber.StatusInternalServerError, m.failure)
}

// bind decodes the JSON body into dst and validates it. The returned
// *fiber.Error is rendered by the app error handler.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"reason": "body"})
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"reason": err.Error()})
		return fiber.NewError(fiber.StatusBadRequest, validate.Message(err))
	}
	return nil
}

// pathID reads a resource id route param. Malformed ids cannot exist, so they 404.
func pathID(c *fiber.Ctx, name string) (string, error) {
	id, ok := validate.ID(c.Params(name))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": name})
		return "", fiber.NewError(fiber.StatusNotFound, "Not found")
	}
	return id, nil
}

// pathSubject reads a user id route param. Fiber leaves params escaped, and
// provider subjects often carry characters like '|' that clients must escape.
func pathSubject(c *fiber.Ctx, name string) (string, error) {
	raw, err := url.PathUnescape(c.Params(name))
	if err == nil {
		if id, ok := validate.Subject(raw); ok {
			return id, nil
		}
	}
	applog.Security(c, "validation.fail", map[string]any{"field": name})
	return "", fiber.NewError(fiber.StatusNotFound, "Not found")
}

// currentUser returns the user RequireUser attached to the request.
func currentUser(c *fiber.Ctx) (*domain.User, error) {
	u, ok := c.Locals("user").(*domain.User)
	if !ok || u == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return u, nil
}
