package handlers

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"marketplace/internal/config"
	applog "marketplace/internal/log"
)

// Options tweaks NewApp for tests and tools.
type Options struct {
	AccessLog io.Writer // nil means stdout; io.Discard silences it
}

// NewApp builds the fiber app with middleware and all API routes.
func NewApp(cfg config.Config, deps *Deps, opts Options) *fiber.App {
	bodyLimit := cfg.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}
	app := fiber.New(fiber.Config{
		AppName:      "marketplace",
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})

	out := opts.AccessLog
	if out == nil {
		out = os.Stdout
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: out,
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	rate := cfg.RateLimit
	if rate <= 0 {
		rate = 120
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rate,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return message(c, fiber.StatusTooManyRequests, "Too many requests, retry soon")
		},
	}))

	Register(app, deps)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return message(c, fiber.StatusNotFound, "Not found")
	})
	return app
}

// Register mounts the /api routes.
func Register(app *fiber.App, deps *Deps) {
	auth := RequireUser(deps.Verifier, deps.Profiles)

	// Checkout writes several tables; throttle per user.
	checkoutLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if u, err := currentUser(c); err == nil {
				return "checkout|" + u.ID
			}
			return "checkout|" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.checkout.hit", nil)
			return message(c, fiber.StatusTooManyRequests, "Too many orders, retry soon")
		},
	})

	api := app.Group("/api")

	api.Get("/auth/user", auth, deps.AuthHandler.Me)
	api.Patch("/auth/user", auth, deps.AuthHandler.UpdateMe)

	api.Get("/categories", deps.CategoryHandler.List)

	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/user/:userId", auth, deps.ProductHandler.BySeller)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Post("/products", auth, deps.ProductHandler.Create)
	api.Patch("/products/:id", auth, deps.ProductHandler.Update)
	api.Delete("/products/:id", auth, deps.ProductHandler.Delete)

	api.Get("/cart", auth, deps.CartHandler.View)
	api.Post("/cart", auth, deps.CartHandler.Add)
	api.Patch("/cart/:id", auth, deps.CartHandler.Update)
	api.Delete("/cart/:id", auth, deps.CartHandler.Remove)

	api.Post("/orders", auth, checkoutLimiter, deps.OrderHandler.Place)
	api.Get("/orders", auth, deps.OrderHandler.History)
	api.Get("/orders/:id", auth, deps.OrderHandler.View)
}

// ErrorHandler renders errors that escaped a handler. Client errors keep
// their message; server errors are logged and answered generically.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
		return message(c, code, "Something went wrong. Please try again.")
	}
	return message(c, code, fe.Message)
}
