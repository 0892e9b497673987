package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/leji-a/Inventory-Tracker/internal/auth"
	"github.com/leji-a/Inventory-Tracker/internal/http/handlers"
	"github.com/leji-a/Inventory-Tracker/internal/metrics"
	"github.com/leji-a/Inventory-Tracker/internal/repos"
	"github.com/leji-a/Inventory-Tracker/internal/storage"
)

const testSecret = "test-secret-0123456789"

type testApp struct {
	app     *fiber.App
	jwt     *auth.JWTVerifier
	media   string
	metrics *metrics.Metrics
}

// newTestApp builds the real app over in-memory SQLite and a temp media dir.
func newTestApp(t *testing.T, tweak ...func(*handlers.AppOptions)) *testApp {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dir := t.TempDir()
	disk, err := storage.NewDisk(dir, "http://localhost:8080/media")
	if err != nil {
		t.Fatal(err)
	}
	v, err := auth.NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	m := metrics.New("inventory")

	opts := handlers.AppOptions{
		Verifier:        v,
		Metrics:         m,
		BodyLimit:       8 << 20,
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
		MediaDir:        disk.Dir,
		Health:          db.PingContext,
	}
	for _, f := range tweak {
		f(&opts)
	}
	return &testApp{
		app:     handlers.NewApp(handlers.NewDeps(db, disk, m), opts),
		jwt:     v,
		media:   disk.Dir,
		metrics: m,
	}
}

func (ta *testApp) token(t *testing.T, uid string) string {
	t.Helper()
	tok, err := ta.jwt.Issue(uid, uid+"@example.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (ta *testApp) send(t *testing.T, req *http.Request, uid string) *http.Response {
	t.Helper()
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+ta.token(t, uid))
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

// do sends body as JSON (when non-nil) on behalf of uid ("" for anonymous).
func (ta *testApp) do(t *testing.T, method, path, uid string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ta.send(t, req, uid)
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

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("want %d, got %d body=%s", want, resp.StatusCode, body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type productResp struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	CategoryIDs   []int64  `json:"categoryIds"`
	CategoryNames []string `json:"categoryNames"`
	Images        []struct {
		ID           int64  `json:"id"`
		URL          string `json:"url"`
		DisplayOrder int    `json:"display_order"`
	} `json:"images"`
}

func (ta *testApp) createProduct(t *testing.T, uid, name string, price float64) productResp {
	t.Helper()
	resp := ta.do(t, "POST", "/products", uid, map[string]any{"name": name, "price": price})
	expectStatus(t, resp, fiber.StatusCreated)
	return decode[productResp](t, resp)
}
