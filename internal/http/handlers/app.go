package handlers

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/auth"
	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/metrics"
)

type AppOptions struct {
	Verifier auth.Verifier
	Metrics  *metrics.Metrics // nil disables /metrics and request metrics

	BodyLimit       int // bytes; fiber's default when zero
	RateLimitMax    int // requests per window across all callers; 0 disables
	RateLimitWindow time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration

	MediaDir string                          // serves /media/* when set (disk storage)
	Health   func(ctx context.Context) error // checked by /healthz when set
}

// ErrorHandler renders every error as {"error": msg}. Internal details are
// logged and replaced with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	return c.Status(status).JSON(fiber.Map{"error": apperr.Message(err)})
}

// NewApp builds the API: middleware, unauthenticated ops routes and the
// bearer-guarded resource routes.
func NewApp(deps *Deps, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "inventory-tracker",
		Immutable:    true,
		ErrorHandler: ErrorHandler,
		BodyLimit:    opts.BodyLimit,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(applog.Middleware())
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
	}
	app.Use(recover.New())
	if opts.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: opts.RateLimitWindow,
			// One fixed window shared by every caller.
			KeyGenerator: func(*fiber.Ctx) string { return "global" },
			Next: func(c *fiber.Ctx) bool {
				p := c.Path()
				return p == "/healthz" || p == "/metrics" || strings.HasPrefix(p, "/media/")
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.limit.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			},
		}))
	}

	// ---------- Ops ----------
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if opts.Health != nil {
			if err := opts.Health(c.UserContext()); err != nil {
				applog.Error(c, "health.fail", err, nil)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
			}
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	if opts.Metrics != nil {
		app.Get("/metrics", opts.Metrics.Handler())
	}
	if opts.MediaDir != "" {
		app.Get("/media/*", mediaHandler(opts.MediaDir))
	}

	// ---------- API ----------
	guard := RequireBearer(opts.Verifier)

	products := app.Group("/products", guard)
	// Fixed paths first so they are not captured by /:id.
	products.Get("/export", deps.TransferHandler.ExportProducts)
	products.Post("/import", deps.TransferHandler.ImportProducts)
	products.Get("/", deps.ProductHandler.List)
	products.Post("/", deps.ProductHandler.Create)
	products.Get("/:id", deps.ProductHandler.Get)
	products.Put("/:id", deps.ProductHandler.Update)
	products.Delete("/:id", deps.ProductHandler.Delete)
	products.Post("/:id/images", deps.ImageHandler.Upload)
	products.Post("/:id/images/url", deps.ImageHandler.AddURL)
	products.Put("/:id/images/reorder", deps.ImageHandler.Reorder)
	products.Delete("/:id/images/:imageId", deps.ImageHandler.Delete)

	categories := app.Group("/categories", guard)
	categories.Get("/", deps.CategoryHandler.List)
	categories.Post("/", deps.CategoryHandler.Create)
	categories.Get("/:id", deps.CategoryHandler.Get)
	categories.Put("/:id", deps.CategoryHandler.Update)
	categories.Delete("/:id", deps.CategoryHandler.Delete)

	inv := app.Group("/inventory", guard)
	inv.Get("/periods", deps.InventoryHandler.ListPeriods)
	inv.Get("/periods/active", deps.InventoryHandler.ActivePeriod)
	inv.Post("/periods", deps.InventoryHandler.CreatePeriod)
	inv.Post("/periods/:id/close", deps.InventoryHandler.ClosePeriod)
	inv.Post("/periods/:id/records", deps.InventoryHandler.AddRecord)
	inv.Get("/periods/:id/records", deps.InventoryHandler.PeriodRecords)
	inv.Delete("/periods/:id/records/:productId", deps.InventoryHandler.DeleteRecord)
	inv.Get("/current", deps.InventoryHandler.Current)
	inv.Get("/products/:id/history", deps.InventoryHandler.History)
	inv.Get("/export/current", deps.TransferHandler.ExportCurrent)
	inv.Get("/export/products", deps.TransferHandler.ExportCountSheet)
	inv.Post("/import/products", deps.TransferHandler.ImportProducts)
	inv.Post("/import/inventory", deps.TransferHandler.ImportInventory)

	app.Use(func(c *fiber.Ctx) error {
		return apperr.New(apperr.NotFound, "route not found")
	})
	return app
}

// mediaHandler serves uploaded objects from dir, refusing traversal.
func mediaHandler(dir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// Block encoded traversal attempts as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(dir, clean), true)
	}
}
