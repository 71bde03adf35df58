package services

import (
	"context"
	"errors"

	"marketplace/internal/domain"
	"marketplace/internal/repos"
)

type ProfileService struct {
	Store *repos.Store
}

func NewProfileService(store *repos.Store) *ProfileService { return &ProfileService{Store: store} }

// Ensure returns the stored user for seed.ID, creating it from the identity
// claims the first time the user is seen.
func (s *ProfileService) Ensure(ctx context.Context, seed domain.User) (*domain.User, error) {
	u, err := s.Store.Users.Get(ctx, seed.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repos.ErrNotFound) {
		return nil, err
	}
	return s.Store.Users.Upsert(ctx, seed)
}

func (s *ProfileService) Current(ctx context.Context, id string) (*domain.User, error) {
	return s.Store.Users.Get(ctx, id)
}

func (s *ProfileService) Update(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	return s.Store.Users.Update(ctx, id, patch)
}
