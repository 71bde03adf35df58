package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"

	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/http/handlers"
	"marketplace/internal/identity"
	"marketplace/internal/repos"
	"marketplace/internal/services"
)

const testSecret = "test-secret"

type testApp struct {
	app      *fiber.App
	db       *sqlx.DB
	store    *repos.Store
	verifier *identity.Verifier
	category *domain.Category
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:       ":memory:",
		JWTSecret:   testSecret,
		JWTIssuer:   "idp.test",
		CORSOrigins: "*",
		BodyLimit:   1 << 20,
		RateLimit:   1000,
	}
}

func newTestApp(t *testing.T, cfg config.Config) *testApp {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := repos.NewStore(db)
	cat, err := services.NewCatalogService(store).CreateCategory(context.Background(), "Electronics", "", "Gadgets")
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return &testApp{
		app:      handlers.NewApp(cfg, handlers.NewDeps(db, cfg), handlers.Options{AccessLog: io.Discard}),
		db:       db,
		store:    store,
		verifier: identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		category: cat,
	}
}

// token mints a bearer token the way the identity provider would.
func (ta *testApp) token(t *testing.T, sub string) string {
	t.Helper()
	tok, err := ta.verifier.Issue(identity.Claims{
		Email:            sub + "@example.com",
		FirstName:        sub,
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
	}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func bodyString(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("want %d, got %d body=%s", want, resp.StatusCode, bodyString(resp))
	}
}

// createProduct lists a product as sub and returns it.
func (ta *testApp) createProduct(t *testing.T, token, title, price string) domain.Product {
	t.Helper()
	resp := ta.do(t, "POST", "/api/products", token, map[string]any{
		"title":      title,
		"price":      price,
		"categoryId": ta.category.ID,
		"condition":  "good",
	})
	expectStatus(t, resp, fiber.StatusCreated)
	return decode[domain.Product](t, resp)
}
