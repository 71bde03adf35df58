package handlers

import (
	"github.com/jmoiron/sqlx"

	"marketplace/internal/config"
	"marketplace/internal/identity"
	"marketplace/internal/repos"
	"marketplace/internal/services"
)

type Deps struct {
	Verifier *identity.Verifier
	Profiles *services.ProfileService

	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	store := repos.NewStore(db)

	profileSvc := services.NewProfileService(store)
	catalogSvc := services.NewCatalogService(store)
	cartSvc := services.NewCartService(store)
	checkoutSvc := services.NewCheckoutService(store, cfg.StrictCheckout)

	return &Deps{
		Verifier:        identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Profiles:        profileSvc,
		AuthHandler:     &AuthHandler{Profiles: profileSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		OrderHandler:    &OrderHandler{Checkout: checkoutSvc},
	}
}
