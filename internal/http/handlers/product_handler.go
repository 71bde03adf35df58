package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	"marketplace/internal/log"
	"marketplace/internal/services"
	"marketplace/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

var productMsgs = msgs{notFound: "Product not found", failure: "Failed to fetch product"}

// GET /api/products?category=&search=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var category string
	if raw := c.Query("category"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return message(c, fiber.StatusBadRequest, "category is invalid")
		}
		category = id
	}
	search, ok := validate.Search(c.Query("search"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "search"})
		return message(c, fiber.StatusBadRequest, "search is invalid")
	}
	list, err := h.Catalog.ListProducts(c.UserContext(), category, search)
	if err != nil {
		return fail(c, "product.list", err, msgs{failure: "Failed to fetch products"})
	}
	return c.JSON(list)
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, "product.get", err, productMsgs)
	}
	return c.JSON(p)
}

// GET /api/products/user/:userId
func (h *ProductHandler) BySeller(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	sellerID, err := pathSubject(c, "userId")
	if err != nil {
		return err
	}
	list, err := h.Catalog.ListSellerProducts(c.UserContext(), u.ID, sellerID)
	if err != nil {
		return fail(c, "product.list.seller", err, msgs{failure: "Failed to fetch user products"})
	}
	return c.JSON(list)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in domain.NewProduct
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), u.ID, in)
	if err != nil {
		return fail(c, "product.create", err, msgs{failure: "Failed to create product"})
	}
	log.Audit(c, "product.create", map[string]any{"product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PATCH /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch domain.ProductPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), u.ID, id, patch)
	if err != nil {
		return fail(c, "product.update", err, msgs{notFound: "Product not found", failure: "Failed to update product"})
	}
	log.Audit(c, "product.update", map[string]any{"product_id": id})
	return c.JSON(p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), u.ID, id); err != nil {
		return fail(c, "product.delete", err, msgs{notFound: "Product not found", failure: "Failed to delete product"})
	}
	log.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
