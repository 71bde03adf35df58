package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/log"
	"marketplace/internal/services"
)

type CartHandler struct {
	Cart *services.CartService
}

type addToCart struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type setQuantity struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=99"`
}

var cartMsgs = msgs{notFound: "Cart item not found", failure: "Failed to update cart"}

// GET /api/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	lines, err := h.Cart.View(c.UserContext(), u.ID)
	if err != nil {
		return fail(c, "cart.view", err, msgs{failure: "Failed to fetch cart"})
	}
	return c.JSON(lines)
}

// POST /api/cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in addToCart
	if err := bind(c, &in); err != nil {
		return err
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	it, err := h.Cart.Add(c.UserContext(), u.ID, in.ProductID, in.Quantity)
	if err != nil {
		return fail(c, "cart.add", err, msgs{failure: "Failed to add to cart"})
	}
	log.Info(c, "cart.add", map[string]any{"product_id": in.ProductID, "quantity": it.Quantity})
	return c.Status(fiber.StatusCreated).JSON(it)
}

// PATCH /api/cart/:id
func (h *CartHandler) Update(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in setQuantity
	if err := bind(c, &in); err != nil {
		return err
	}
	it, err := h.Cart.UpdateQuantity(c.UserContext(), u.ID, id, in.Quantity)
	if err != nil {
		return fail(c, "cart.update", err, cartMsgs)
	}
	return c.JSON(it)
}

// DELETE /api/cart/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Cart.Remove(c.UserContext(), u.ID, id); err != nil {
		return fail(c, "cart.remove", err, cartMsgs)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
