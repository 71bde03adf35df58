package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/domain"
	"marketplace/internal/repos"
)

type CatalogService struct {
	Store *repos.Store
}

func NewCatalogService(store *repos.Store) *CatalogService {
	return &CatalogService{Store: store}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Store.Categories.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, slug, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	if slug == "" {
		slug = slugify(name)
	}
	return s.Store.Categories.Create(ctx, domain.Category{Name: name, Slug: slug, Description: description})
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID, search string) ([]domain.ProductListing, error) {
	return s.Store.Products.List(ctx, repos.ProductFilter{CategoryID: categoryID, Search: search})
}

// GetProduct returns the listing and counts the view. A failed view update
// does not fail the read.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.ProductListing, error) {
	p, err := s.Store.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.Store.Products.IncrementViews(ctx, id)
	return p, nil
}

// ListSellerProducts returns every listing of sellerID, drafts included, so
// only the seller may ask for them.
func (s *CatalogService) ListSellerProducts(ctx context.Context, callerID, sellerID string) ([]domain.SellerProduct, error) {
	if callerID != sellerID {
		return nil, ErrForbidden
	}
	return s.Store.Products.ListBySeller(ctx, sellerID)
}

func (s *CatalogService) CreateProduct(ctx context.Context, sellerID string, in domain.NewProduct) (*domain.Product, error) {
	if !in.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrInvalid)
	}
	if _, err := s.Store.Categories.Get(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown category", ErrInvalid)
		}
		return nil, err
	}
	return s.Store.Products.Create(ctx, domain.Product{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Condition:   in.Condition,
		Status:      in.Status,
		ImageURL:    in.ImageURL,
		SellerID:    sellerID,
		CategoryID:  in.CategoryID,
	})
}

// UpdateProduct applies patch when callerID owns the listing. A sold listing
// keeps its status.
func (s *CatalogService) UpdateProduct(ctx context.Context, callerID, id string, patch domain.ProductPatch) (*domain.Product, error) {
	var out *domain.Product
	err := s.Store.InTx(ctx, func(tx *repos.Store) error {
		p, err := tx.Products.Find(ctx, id)
		if err != nil {
			return err
		}
		if p.SellerID != callerID {
			return ErrForbidden
		}
		if patch.Price != nil && !patch.Price.IsPositive() {
			return fmt.Errorf("%w: price must be greater than zero", ErrInvalid)
		}
		if patch.Status != nil && p.Status == domain.StatusSold {
			return fmt.Errorf("%w: sold listings cannot change status", repos.ErrConflict)
		}
		if patch.CategoryID != nil {
			if _, err := tx.Categories.Get(ctx, *patch.CategoryID); err != nil {
				if errors.Is(err, repos.ErrNotFound) {
					return fmt.Errorf("%w: unknown category", ErrInvalid)
				}
				return err
			}
		}
		out, err = tx.Products.Update(ctx, id, patch)
		return err
	})
	return out, err
}

func (s *CatalogService) DeleteProduct(ctx context.Context, callerID, id string) error {
	return s.Store.InTx(ctx, func(tx *repos.Store) error {
		p, err := tx.Products.Find(ctx, id)
		if err != nil {
			return err
		}
		if p.SellerID != callerID {
			return ErrForbidden
		}
		return tx.Products.Delete(ctx, id)
	})
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
