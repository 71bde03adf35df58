package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"marketplace/internal/domain"
	"marketplace/internal/repos"
)

// Flat charges added to every order.
var (
	ShippingFee = decimal.RequireFromString("12.00")
	ServiceFee  = decimal.RequireFromString("3.99")
)

type CheckoutService struct {
	Store *repos.Store
	// Strict rejects orders containing listings that are no longer active.
	// When false an already-sold listing can be sold again.
	Strict bool
}

func NewCheckoutService(store *repos.Store, strict bool) *CheckoutService {
	return &CheckoutService{Store: store, Strict: strict}
}

// Place prices the order from live product prices and, in one transaction,
// records the order and its items, marks the products sold and empties the
// buyer's cart. Nothing is written if any step fails.
func (s *CheckoutService) Place(ctx context.Context, buyerID string, req domain.PlaceOrder) (*domain.OrderDetail, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrInvalid)
	}

	var out *domain.OrderDetail
	err := s.Store.InTx(ctx, func(tx *repos.Store) error {
		subtotal := decimal.Zero
		items := make([]domain.OrderItem, 0, len(req.Items))
		ids := make([]string, 0, len(req.Items))

		for _, line := range req.Items {
			if line.Quantity < 1 {
				return fmt.Errorf("%w: quantity must be at least 1", ErrInvalid)
			}
			p, err := tx.Products.Find(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, repos.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrProductMissing, line.ProductID)
				}
				return err
			}
			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, domain.OrderItem{
				ProductID: p.ID,
				SellerID:  p.SellerID,
				Quantity:  line.Quantity,
				Price:     p.Price,
			})
			ids = append(ids, p.ID)
		}

		order, err := tx.Orders.Create(ctx, domain.Order{
			BuyerID:         buyerID,
			Total:           Total(subtotal),
			ShippingAddress: req.ShippingAddress,
			Status:          domain.OrderCompleted,
		}, items)
		if err != nil {
			return err
		}
		if err := tx.Products.MarkSold(ctx, ids, s.Strict); err != nil {
			if errors.Is(err, repos.ErrConflict) {
				return fmt.Errorf("%w: a listing in this order is no longer available", repos.ErrConflict)
			}
			return err
		}
		if err := tx.Cart.Clear(ctx, buyerID); err != nil {
			return err
		}

		out, err = tx.Orders.Get(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Total adds the flat shipping and service charges to subtotal.
func Total(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(ShippingFee).Add(ServiceFee).Round(2)
}

// History lists the buyer's orders, newest first.
func (s *CheckoutService) History(ctx context.Context, buyerID string) ([]domain.OrderDetail, error) {
	return s.Store.Orders.ListByBuyer(ctx, buyerID)
}

// Order returns one of the buyer's orders. Other buyers' orders read as missing.
func (s *CheckoutService) Order(ctx context.Context, buyerID, id string) (*domain.OrderDetail, error) {
	o, err := s.Store.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, repos.ErrNotFound
	}
	return o, nil
}
