package client

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
)

// Cached resource paths.
const (
	PathUser         = "/api/auth/user"
	PathCategories   = "/api/categories"
	PathProducts     = "/api/products"
	PathUserProducts = "/api/products/user"
	PathCart         = "/api/cart"
	PathOrders       = "/api/orders"
)

func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	return query[*domain.User](ctx, c, newKey(PathUser), PathUser)
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	return query[[]domain.Category](ctx, c, newKey(PathCategories), PathCategories)
}

// Products lists active listings; empty filters are ignored.
func (c *Client) Products(ctx context.Context, category, search string) ([]domain.ProductListing, error) {
	uri := PathProducts
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if search != "" {
		q.Set("search", search)
	}
	if len(q) > 0 {
		uri += "?" + q.Encode()
	}
	return query[[]domain.ProductListing](ctx, c, newKey(PathProducts, category, search), uri)
}

func (c *Client) Product(ctx context.Context, id string) (*domain.ProductListing, error) {
	return query[*domain.ProductListing](ctx, c, newKey(PathProducts, id), PathProducts+"/"+url.PathEscape(id))
}

func (c *Client) SellerProducts(ctx context.Context, userID string) ([]domain.SellerProduct, error) {
	return query[[]domain.SellerProduct](ctx, c, newKey(PathUserProducts, userID), PathUserProducts+"/"+url.PathEscape(userID))
}

func (c *Client) Cart(ctx context.Context) ([]domain.CartLine, error) {
	return query[[]domain.CartLine](ctx, c, newKey(PathCart), PathCart)
}

func (c *Client) Orders(ctx context.Context) ([]domain.OrderDetail, error) {
	return query[[]domain.OrderDetail](ctx, c, newKey(PathOrders), PathOrders)
}

func (c *Client) Order(ctx context.Context, id string) (*domain.OrderDetail, error) {
	return query[*domain.OrderDetail](ctx, c, newKey(PathOrders, id), PathOrders+"/"+url.PathEscape(id))
}

func (c *Client) AddToCart(ctx context.Context, productID string, qty int) (*domain.CartItem, error) {
	body := map[string]any{"productId": productID, "quantity": qty}
	return mutate[*domain.CartItem](ctx, c, fiber.MethodPost, PathCart, body, PathCart)
}

func (c *Client) UpdateCartItem(ctx context.Context, id string, qty int) (*domain.CartItem, error) {
	body := map[string]any{"quantity": qty}
	return mutate[*domain.CartItem](ctx, c, fiber.MethodPatch, PathCart+"/"+url.PathEscape(id), body, PathCart)
}

func (c *Client) RemoveCartItem(ctx context.Context, id string) error {
	_, err := mutate[struct{}](ctx, c, fiber.MethodDelete, PathCart+"/"+url.PathEscape(id), nil, PathCart)
	return err
}

func (c *Client) CreateProduct(ctx context.Context, in domain.NewProduct) (*domain.Product, error) {
	return mutate[*domain.Product](ctx, c, fiber.MethodPost, PathProducts, in, PathProducts, PathUserProducts)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	return mutate[*domain.Product](ctx, c, fiber.MethodPatch, PathProducts+"/"+url.PathEscape(id), patch, PathProducts, PathUserProducts)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := mutate[struct{}](ctx, c, fiber.MethodDelete, PathProducts+"/"+url.PathEscape(id), nil, PathProducts, PathUserProducts)
	return err
}

// PlaceOrder checks out; the server empties the cart and marks listings sold.
func (c *Client) PlaceOrder(ctx context.Context, req domain.PlaceOrder) (*domain.OrderDetail, error) {
	return mutate[*domain.OrderDetail](ctx, c, fiber.MethodPost, PathOrders, req, PathCart, PathOrders, PathProducts)
}

func (c *Client) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*domain.User, error) {
	return mutate[*domain.User](ctx, c, fiber.MethodPatch, PathUser, patch, PathUser)
}
