package log_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "github.com/leji-a/Inventory-Tracker/internal/log"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	applog.SetLogger(zap.New(core))
	t.Cleanup(func() { applog.SetLogger(nil) })
	return logs
}

func TestActionLogsCarryRequestContext(t *testing.T) {
	logs := observe(t)

	app := fiber.New()
	app.Use(requestid.New())
	app.Post("/things", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u-1")
		applog.Audit(c, "thing.create", map[string]any{"id": 7})
		return c.SendStatus(fiber.StatusCreated)
	})

	if _, err := app.Test(httptest.NewRequest("POST", "/things", nil)); err != nil {
		t.Fatal(err)
	}

	entries := logs.FilterMessage("thing.create").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["user_id"] != "u-1" {
		t.Fatalf("user_id missing: %v", ctx)
	}
	if ctx["req_id"] == "" || ctx["req_id"] == nil {
		t.Fatalf("req_id missing: %v", ctx)
	}
	if ctx["audit"] != true {
		t.Fatalf("audit flag missing: %v", ctx)
	}
	fields, ok := ctx["fields"].(map[string]any)
	if !ok || fields["id"] == nil {
		t.Fatalf("fields missing: %v", ctx)
	}
}

func TestSecurityAndErrorLevels(t *testing.T) {
	logs := observe(t)
	applog.Security(nil, "auth.token.reject", nil)
	applog.Error(nil, "server.error", errors.New("boom"), nil)

	if e := logs.FilterMessage("auth.token.reject").All(); len(e) != 1 || e[0].Level != zapcore.WarnLevel {
		t.Fatalf("security entry wrong: %+v", e)
	}
	e := logs.FilterMessage("server.error").All()
	if len(e) != 1 || e[0].Level != zapcore.ErrorLevel {
		t.Fatalf("error entry wrong: %+v", e)
	}
	if e[0].ContextMap()["error"] != "boom" {
		t.Fatalf("error text missing: %v", e[0].ContextMap())
	}
}

func TestMiddlewareLogsRenderedStatus(t *testing.T) {
	logs := observe(t)

	app := fiber.New()
	app.Use(applog.Middleware())
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	entries := logs.FilterMessage("http.request").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 access entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(404) {
		t.Fatalf("logged status %v, want 404", got)
	}
}

func TestInitFallsBackToInfo(t *testing.T) {
	l, err := applog.Init("nonsense", "production")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { applog.SetLogger(nil) })
	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected info level")
	}
}

func TestLoggedFieldsSurviveBufferReuse(t *testing.T) {
	logs := observe(t)

	app := fiber.New()
	app.Post("/items", func(c *fiber.Ctx) error {
		applog.Info(c, "item.create", nil)
		return c.SendStatus(fiber.StatusCreated)
	})
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for _, r := range []struct{ method, path string }{{"POST", "/items"}, {"GET", "/x"}} {
		if _, err := app.Test(httptest.NewRequest(r.method, r.path, nil)); err != nil {
			t.Fatal(err)
		}
	}

	entries := logs.FilterMessage("item.create").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	f := entries[0].ContextMap()
	if f["method"] != "POST" || f["path"] != "/items" {
		t.Fatalf("fields changed after the next request: method=%v path=%v", f["method"], f["path"])
	}
}
