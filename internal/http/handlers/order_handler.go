package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	"marketplace/internal/log"
	"marketplace/internal/services"
)

type OrderHandler struct {
	Checkout *services.CheckoutService
}

// POST /api/orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req domain.PlaceOrder
	if err := bind(c, &req); err != nil {
		return err
	}
	o, err := h.Checkout.Place(c.UserContext(), u.ID, req)
	if err != nil {
		return fail(c, "order.place", err, msgs{failure: "Failed to create order"})
	}
	log.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"items":    len(o.Items),
		"total":    o.Total.StringFixed(2),
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

// GET /api/orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.Checkout.History(c.UserContext(), u.ID)
	if err != nil {
		return fail(c, "order.list", err, msgs{failure: "Failed to fetch orders"})
	}
	return c.JSON(orders)
}

// GET /api/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Checkout.Order(c.UserContext(), u.ID, id)
	if err != nil {
		return fail(c, "order.get", err, msgs{notFound: "Order not found", failure: "Failed to fetch order"})
	}
	return c.JSON(o)
}
