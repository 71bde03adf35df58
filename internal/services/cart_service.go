package services

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/domain"
	"marketplace/internal/repos"
)

type CartService struct {
	Store *repos.Store
}

func NewCartService(store *repos.Store) *CartService {
	return &CartService{Store: store}
}

func (s *CartService) View(ctx context.Context, userID string) ([]domain.CartLine, error) {
	return s.Store.Cart.List(ctx, userID)
}

// Add merges qty into the user's line for productID.
func (s *CartService) Add(ctx context.Context, userID, productID string, qty int) (*domain.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalid)
	}
	it, err := s.Store.Cart.Add(ctx, userID, productID, qty)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrProductMissing
	}
	return it, err
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, id string, qty int) (*domain.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalid)
	}
	return s.Store.Cart.UpdateQuantity(ctx, userID, id, qty)
}

func (s *CartService) Remove(ctx context.Context, userID, id string) error {
	return s.Store.Cart.Remove(ctx, userID, id)
}
