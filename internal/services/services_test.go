package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"marketplace/internal/domain"
	"marketplace/internal/repos"
)

type env struct {
	db       *sqlx.DB
	store    *repos.Store
	catalog  *CatalogService
	cart     *CartService
	profiles *ProfileService
	category *domain.Category
	seller   *domain.User
	buyer    *domain.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvDSN(t, ":memory:")
}

// newEnvDSN opens dsn instead of a private in-memory database.
func newEnvDSN(t *testing.T, dsn string) *env {
	t.Helper()
	db, err := repos.OpenDB(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := repos.NewStore(db)
	e := &env{
		db:       db,
		store:    store,
		catalog:  NewCatalogService(store),
		cart:     NewCartService(store),
		profiles: NewProfileService(store),
	}
	ctx := context.Background()
	if e.seller, err = e.profiles.Ensure(ctx, domain.User{ID: "seller", Email: "s@example.com"}); err != nil {
		t.Fatal(err)
	}
	if e.buyer, err = e.profiles.Ensure(ctx, domain.User{ID: "buyer", Email: "b@example.com"}); err != nil {
		t.Fatal(err)
	}
	if e.category, err = e.catalog.CreateCategory(ctx, "Home & Garden", "", ""); err != nil {
		t.Fatal(err)
	}
	return e
}

func (e *env) listing(t *testing.T, price string) *domain.Product {
	t.Helper()
	p, err := e.catalog.CreateProduct(context.Background(), e.seller.ID, domain.NewProduct{
		Title:      "Item " + price,
		Price:      decimal.RequireFromString(price),
		CategoryID: e.category.ID,
		Condition:  "good",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func order(ids ...string) domain.PlaceOrder {
	req := domain.PlaceOrder{ShippingAddress: "1 Main St"}
	for _, id := range ids {
		req.Items = append(req.Items, domain.LineItem{ProductID: id, Quantity: 1})
	}
	return req
}

func TestCreateCategorySlug(t *testing.T) {
	e := newEnv(t)
	if e.category.Slug != "home-garden" {
		t.Fatalf("want slug home-garden, got %q", e.category.Slug)
	}
	if _, err := e.catalog.CreateCategory(context.Background(), "  ", "", ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("blank name: want ErrInvalid, got %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.catalog.CreateProduct(ctx, e.seller.ID, domain.NewProduct{
		Title: "Free", Price: decimal.Zero, CategoryID: e.category.ID, Condition: "new",
	})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("zero price: want ErrInvalid, got %v", err)
	}
	_, err = e.catalog.CreateProduct(ctx, e.seller.ID, domain.NewProduct{
		Title: "Lost", Price: decimal.NewFromInt(3), CategoryID: "nope", Condition: "new",
	})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("unknown category: want ErrInvalid, got %v", err)
	}

	p := e.listing(t, "9.5")
	if p.Status != domain.StatusActive || p.SellerID != e.seller.ID {
		t.Fatalf("defaults not applied: %+v", p)
	}
}

func TestProductOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.listing(t, "30")

	title := "Stolen"
	if _, err := e.catalog.UpdateProduct(ctx, e.buyer.ID, p.ID, domain.ProductPatch{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner update: want ErrForbidden, got %v", err)
	}
	zero := decimal.Zero
	if _, err := e.catalog.UpdateProduct(ctx, e.buyer.ID, p.ID, domain.ProductPatch{Price: &zero}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner bad price: want ErrForbidden, got %v", err)
	}
	if err := e.catalog.DeleteProduct(ctx, e.buyer.ID, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner delete: want ErrForbidden, got %v", err)
	}
	got, _ := e.store.Products.Find(ctx, p.ID)
	if got.Title != p.Title {
		t.Fatalf("product changed by non-owner: %q", got.Title)
	}

	if _, err := e.catalog.ListSellerProducts(ctx, e.buyer.ID, e.seller.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign dashboard: want ErrForbidden, got %v", err)
	}
	if err := e.catalog.DeleteProduct(ctx, e.seller.ID, "missing"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("missing: want ErrNotFound, got %v", err)
	}
	if err := e.catalog.DeleteProduct(ctx, e.seller.ID, p.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestSoldListingKeepsStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.listing(t, "30")
	if err := e.store.Products.MarkSold(ctx, []string{p.ID}, false); err != nil {
		t.Fatal(err)
	}
	active := domain.StatusActive
	if _, err := e.catalog.UpdateProduct(ctx, e.seller.ID, p.ID, domain.ProductPatch{Status: &active}); !errors.Is(err, repos.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	title := "Renamed"
	up, err := e.catalog.UpdateProduct(ctx, e.seller.ID, p.ID, domain.ProductPatch{Title: &title})
	if err != nil {
		t.Fatalf("non-status edits stay allowed: %v", err)
	}
	if up.Status != domain.StatusSold {
		t.Fatalf("status changed: %q", up.Status)
	}
}

func TestGetProductCountsViews(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.listing(t, "12")
	for i := 0; i < 2; i++ {
		if _, err := e.catalog.GetProduct(ctx, p.ID); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := e.catalog.GetProduct(ctx, p.ID)
	if got.Views != 2 {
		t.Fatalf("want 2 prior views, got %d", got.Views)
	}
	if _, err := e.catalog.GetProduct(ctx, "missing"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCartService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.listing(t, "5")

	if _, err := e.cart.Add(ctx, e.buyer.ID, p.ID, 0); !errors.Is(err, ErrInvalid) {
		t.Fatalf("zero qty: want ErrInvalid, got %v", err)
	}
	if _, err := e.cart.Add(ctx, e.buyer.ID, "missing", 1); !errors.Is(err, ErrProductMissing) {
		t.Fatalf("want ErrProductMissing, got %v", err)
	}
	it, err := e.cart.Add(ctx, e.buyer.ID, p.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.cart.UpdateQuantity(ctx, e.buyer.ID, it.ID, 0); !errors.Is(err, ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
	up, err := e.cart.UpdateQuantity(ctx, e.buyer.ID, it.ID, 4)
	if err != nil || up.Quantity != 4 {
		t.Fatalf("update: %+v %v", up, err)
	}
}

func TestCheckoutTotals(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.listing(t, "50.00")
	if _, err := e.cart.Add(ctx, e.buyer.ID, p.ID, 1); err != nil {
		t.Fatal(err)
	}

	o, err := NewCheckoutService(e.store, false).Place(ctx, e.buyer.ID, order(p.ID))
	if err != nil {
		t.Fatal(err)
	}
	if o.Total.StringFixed(2) != "65.99" {
		t.Fatalf("want total 65.99, got %s", o.Total.StringFixed(2))
	}
	if o.Status != domain.OrderCompleted || len(o.Items) != 1 || !o.Items[0].Price.Equal(p.Price) {
		t.Fatalf("order detail: %+v", o)
	}
	got, _ := e.store.Products.Find(ctx, p.ID)
	if got.Status != domain.StatusSold {
		t.Fatalf("product should be sold, got %q", got.Status)
	}
	lines, _ := e.cart.View(ctx, e.buyer.ID)
	if len(lines) != 0 {
		t.Fatalf("cart should be empty, has %d lines", len(lines))
	}
}

func TestCheckoutQuantityMultiplies(t *testing.T) {
	e := newEnv(t)
	p := e.listing(t, "10.10")
	req := domain.PlaceOrder{ShippingAddress: "x", Items: []domain.LineItem{{ProductID: p.ID, Quantity: 3}}}
	o, err := NewCheckoutService(e.store, false).Place(context.Background(), e.buyer.ID, req)
	if err != nil {
		t.Fatal(err)
	}
	if o.Total.StringFixed(2) != "46.29" {
		t.Fatalf("want 46.29, got %s", o.Total.StringFixed(2))
	}
}

func TestCheckoutMissingProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.listing(t, "5")
	_, err := NewCheckoutService(e.store, false).Place(ctx, e.buyer.ID, order(p.ID, "ghost"))
	if !errors.Is(err, ErrProductMissing) {
		t.Fatalf("want ErrProductMissing, got %v", err)
	}
	got, _ := e.store.Products.Find(ctx, p.ID)
	if got.Status != domain.StatusActive {
		t.Fatal("failed order must not mark products sold")
	}
}

func TestCheckoutRollsBackMidway(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.listing(t, "20")
	if _, err := e.cart.Add(ctx, e.buyer.ID, p.ID, 1); err != nil {
		t.Fatal(err)
	}
	// Fail the third step, after order and items are written.
	if _, err := e.db.Exec(`CREATE TRIGGER fail_sold BEFORE UPDATE OF status ON products
		WHEN NEW.status = 'sold' BEGIN SELECT RAISE(ABORT, 'boom'); END`); err != nil {
		t.Fatal(err)
	}

	if _, err := NewCheckoutService(e.store, false).Place(ctx, e.buyer.ID, order(p.ID)); err == nil {
		t.Fatal("want error from failing step")
	}

	orders, _ := e.store.Orders.ListByBuyer(ctx, e.buyer.ID)
	if len(orders) != 0 {
		t.Fatalf("order persisted after rollback: %d", len(orders))
	}
	var items int
	if err := e.db.Get(&items, `SELECT COUNT(*) FROM order_items`); err != nil || items != 0 {
		t.Fatalf("order items persisted after rollback: %d %v", items, err)
	}
	got, _ := e.store.Products.Find(ctx, p.ID)
	if got.Status != domain.StatusActive {
		t.Fatalf("product status changed: %q", got.Status)
	}
	lines, _ := e.cart.View(ctx, e.buyer.ID)
	if len(lines) != 1 {
		t.Fatalf("cart should be intact, has %d lines", len(lines))
	}
}

func TestCheckoutDoubleSell(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.listing(t, "15")

	lax := NewCheckoutService(e.store, false)
	if _, err := lax.Place(ctx, e.buyer.ID, order(p.ID)); err != nil {
		t.Fatal(err)
	}
	// Default mode does not re-check availability: a sold listing sells again.
	if _, err := lax.Place(ctx, e.buyer.ID, order(p.ID)); err != nil {
		t.Fatalf("default mode resale: %v", err)
	}

	strict := NewCheckoutService(e.store, true)
	if _, err := strict.Place(ctx, e.buyer.ID, order(p.ID)); !errors.Is(err, repos.ErrConflict) {
		t.Fatalf("strict resale: want ErrConflict, got %v", err)
	}
	orders, _ := lax.History(ctx, e.buyer.ID)
	if len(orders) != 2 {
		t.Fatalf("want 2 orders, got %d", len(orders))
	}
}

// Known race: without strict checkout both buyers get an order for the same
// listing. Strict mode lets exactly one through.
func TestConcurrentCheckoutSameProduct(t *testing.T) {
	for _, strict := range []bool{false, true} {
		// a file database gives each checkout its own connection
		e := newEnvDSN(t, filepath.Join(t.TempDir(), "market.db"))
		p := e.listing(t, "40")
		svc := NewCheckoutService(e.store, strict)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Place(context.Background(), e.buyer.ID, order(p.ID))
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
			}
		}
		want := 2
		if strict {
			want = 1
		}
		if ok != want {
			t.Fatalf("strict=%v: want %d successful checkouts, got %d (%v)", strict, want, ok, errs)
		}
	}
}

func TestOrderScopedToBuyer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.listing(t, "15")
	svc := NewCheckoutService(e.store, false)
	o, err := svc.Place(ctx, e.buyer.ID, order(p.ID))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Order(ctx, e.seller.ID, o.ID); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("foreign order: want ErrNotFound, got %v", err)
	}
	if got, err := svc.Order(ctx, e.buyer.ID, o.ID); err != nil || got.ID != o.ID {
		t.Fatalf("own order: %+v %v", got, err)
	}
}

func TestProfileEnsureAndUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	city := "Lisbon"
	if _, err := e.profiles.Update(ctx, e.buyer.ID, domain.ProfilePatch{City: &city}); err != nil {
		t.Fatal(err)
	}
	u, err := e.profiles.Ensure(ctx, domain.User{ID: e.buyer.ID, Email: "changed@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if u.City != "Lisbon" || u.Email != "b@example.com" {
		t.Fatalf("existing profile overwritten: %+v", u)
	}
}
