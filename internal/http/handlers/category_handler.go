package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, "category.list", err, msgs{failure: "Failed to fetch categories"})
	}
	return c.JSON(cats)
}
