package handlers_test

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/leji-a/Inventory-Tracker/internal/domain"
)

func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestImageUploadServedFromMedia(t *testing.T) {
	ta := newTestApp(t)
	p := ta.createProduct(t, "u1", "Lamp", 3)
	path := fmt.Sprintf("/products/%d/images", p.ID)

	body, ct := multipartImage(t, "image", "lamp.png", "image/png", []byte("\x89PNG fake"))
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", ct)
	resp := ta.send(t, req, "u1")
	expectStatus(t, resp, fiber.StatusCreated)
	v := decode[productResp](t, resp)
	if len(v.Images) != 1 || !strings.HasPrefix(v.Images[0].URL, "http://localhost:8080/media/u1/") {
		t.Fatalf("unexpected images: %+v", v.Images)
	}

	mediaPath := strings.TrimPrefix(v.Images[0].URL, "http://localhost:8080")
	resp = ta.do(t, "GET", mediaPath, "", nil)
	expectStatus(t, resp, fiber.StatusOK)
	got, _ := io.ReadAll(resp.Body)
	if string(got) != "\x89PNG fake" {
		t.Fatalf("served bytes differ: %q", got)
	}

	body, ct = multipartImage(t, "image", "anim.gif", "image/gif", []byte("GIF89a"))
	req = httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", ct)
	expectStatus(t, ta.send(t, req, "u1"), fiber.StatusBadRequest)

	body, ct = multipartImage(t, "file", "lamp.png", "image/png", []byte("x"))
	req = httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", ct)
	expectStatus(t, ta.send(t, req, "u1"), fiber.StatusBadRequest)
}

func TestImageURLReorderDelete(t *testing.T) {
	ta := newTestApp(t)
	p := ta.createProduct(t, "u1", "Lamp", 3)
	base := fmt.Sprintf("/products/%d/images", p.ID)

	var v productResp
	for i := 0; i < 3; i++ {
		resp := ta.do(t, "POST", base+"/url", "u1", map[string]string{"image_url": fmt.Sprintf("https://cdn.test/%d.jpg", i)})
		expectStatus(t, resp, fiber.StatusCreated)
		v = decode[productResp](t, resp)
	}
	a, b, c := v.Images[0].ID, v.Images[1].ID, v.Images[2].ID

	resp := ta.do(t, "PUT", base+"/reorder", "u1", map[string]any{"orders": []map[string]int64{{"id": a, "display_order": 0}}})
	expectStatus(t, resp, fiber.StatusBadRequest)

	resp = ta.do(t, "PUT", base+"/reorder", "u1", map[string]any{"orders": []map[string]int64{
		{"id": a, "display_order": 1}, {"id": b, "display_order": 2}, {"id": c, "display_order": 0},
	}})
	expectStatus(t, resp, fiber.StatusOK)
	v = decode[productResp](t, resp)
	if v.Images[0].ID != c || v.Images[1].ID != a {
		t.Fatalf("unexpected order: %+v", v.Images)
	}

	resp = ta.do(t, "DELETE", fmt.Sprintf("%s/%d", base, a), "u1", nil)
	expectStatus(t, resp, fiber.StatusOK)
	v = decode[productResp](t, resp)
	if len(v.Images) != 2 || v.Images[0].ID != c || v.Images[1].ID != b || v.Images[1].DisplayOrder != 1 {
		t.Fatalf("unexpected images after delete: %+v", v.Images)
	}
}

func TestProductCategoriesRoundTrip(t *testing.T) {
	ta := newTestApp(t)
	resp := ta.do(t, "POST", "/categories", "u1", map[string]any{"name": "Tools", "description": "hand tools"})
	expectStatus(t, resp, fiber.StatusCreated)
	cat := decode[domain.Category](t, resp)

	resp = ta.do(t, "POST", "/products", "u1", map[string]any{"name": "Saw", "price": 12.5, "categoryIds": []int64{cat.ID}})
	expectStatus(t, resp, fiber.StatusCreated)
	p := decode[productResp](t, resp)
	if len(p.CategoryNames) != 1 || p.CategoryNames[0] != "Tools" {
		t.Fatalf("unexpected categories: %+v", p)
	}

	resp = ta.do(t, "PUT", fmt.Sprintf("/products/%d", p.ID), "u1", map[string]any{"price": 15, "categoryIds": []int64{}})
	expectStatus(t, resp, fiber.StatusOK)
	p = decode[productResp](t, resp)
	if p.Price != 15 || len(p.CategoryIDs) != 0 {
		t.Fatalf("unexpected update result: %+v", p)
	}

	expectStatus(t, ta.do(t, "DELETE", fmt.Sprintf("/categories/%d", cat.ID), "u1", nil), fiber.StatusNoContent)
	expectStatus(t, ta.do(t, "DELETE", fmt.Sprintf("/products/%d", p.ID), "u1", nil), fiber.StatusNoContent)
	expectStatus(t, ta.do(t, "GET", fmt.Sprintf("/products/%d", p.ID), "u1", nil), fiber.StatusNotFound)
}

func TestInventoryFlow(t *testing.T) {
	ta := newTestApp(t)
	lamp := ta.createProduct(t, "u1", "Lamp", 3)

	expectStatus(t, ta.do(t, "GET", "/inventory/periods/active", "u1", nil), fiber.StatusNotFound)
	cur := decode[domain.CurrentInventory](t, ta.do(t, "GET", "/inventory/current", "u1", nil))
	if cur.Period != nil || len(cur.Records) != 0 {
		t.Fatalf("want empty current inventory, got %+v", cur)
	}

	resp := ta.do(t, "POST", "/inventory/periods", "u1", map[string]any{"name": "Q1", "start_date": "2026-01-01"})
	expectStatus(t, resp, fiber.StatusCreated)
	q1 := decode[domain.InventoryPeriod](t, resp)

	recPath := fmt.Sprintf("/inventory/periods/%d/records", q1.ID)
	expectStatus(t, ta.do(t, "POST", recPath, "u1", map[string]any{"product_id": lamp.ID}), fiber.StatusBadRequest)
	expectStatus(t, ta.do(t, "POST", recPath, "u1", map[string]any{"product_id": lamp.ID, "quantity": 4}), fiber.StatusCreated)

	resp = ta.do(t, "POST", "/inventory/periods", "u1", map[string]any{"name": "Q2"})
	expectStatus(t, resp, fiber.StatusCreated)
	q2 := decode[domain.InventoryPeriod](t, resp)

	periods := decode[struct {
		Data []domain.InventoryPeriod `json:"data"`
	}](t, ta.do(t, "GET", "/inventory/periods", "u1", nil))
	if len(periods.Data) != 2 || periods.Data[0].ID != q2.ID || periods.Data[1].Status != domain.PeriodClosed {
		t.Fatalf("unexpected periods: %+v", periods.Data)
	}

	expectStatus(t, ta.do(t, "POST", fmt.Sprintf("/inventory/periods/%d/records", q2.ID), "u1",
		map[string]any{"product_id": lamp.ID, "quantity": 9, "notes": "recount"}), fiber.StatusCreated)

	hist := decode[struct {
		Data []domain.HistoryRow `json:"data"`
	}](t, ta.do(t, "GET", fmt.Sprintf("/inventory/products/%d/history", lamp.ID), "u1", nil))
	if len(hist.Data) != 2 || hist.Data[0].PeriodName != "Q2" {
		t.Fatalf("unexpected history: %+v", hist.Data)
	}

	cur = decode[domain.CurrentInventory](t, ta.do(t, "GET", "/inventory/current", "u1", nil))
	if cur.Period == nil || cur.Period.ID != q2.ID || len(cur.Records) != 1 || cur.Records[0].Quantity != 9 {
		t.Fatalf("unexpected current inventory: %+v", cur)
	}

	expectStatus(t, ta.do(t, "DELETE", fmt.Sprintf("/inventory/periods/%d/records/%d", q2.ID, lamp.ID), "u1", nil), fiber.StatusNoContent)
	recs := decode[struct {
		Data []domain.RecordRow `json:"data"`
	}](t, ta.do(t, "GET", fmt.Sprintf("/inventory/periods/%d/records", q2.ID), "u1", nil))
	if len(recs.Data) != 0 {
		t.Fatalf("record should be deleted: %+v", recs.Data)
	}

	resp = ta.do(t, "POST", fmt.Sprintf("/inventory/periods/%d/close", q2.ID), "u1", nil)
	expectStatus(t, resp, fiber.StatusOK)
	if p := decode[domain.InventoryPeriod](t, resp); p.Status != domain.PeriodClosed {
		t.Fatalf("period should be closed: %+v", p)
	}
}

func TestCSVEndpoints(t *testing.T) {
	ta := newTestApp(t)
	today := time.Now().UTC().Format("2006-01-02")

	resp := ta.do(t, "POST", "/products/import", "u1", map[string]string{
		"csv": "Name,Price,Categories\nWidget,2.5,Tools\nWidget,3,\nGizmo,-1,\n",
	})
	expectStatus(t, resp, fiber.StatusOK)
	sum := decode[domain.ImportSummary](t, resp)
	if sum.Created != 1 || sum.Skipped != 1 || sum.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	resp = ta.do(t, "GET", "/products/export", "u1", nil)
	expectStatus(t, resp, fiber.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != fmt.Sprintf(`attachment; filename="products-%s.csv"`, today) {
		t.Fatalf("unexpected disposition %q", cd)
	}
	out, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(out), `"Widget",2.50,,"Tools"`) {
		t.Fatalf("unexpected export: %s", out)
	}

	expectStatus(t, ta.do(t, "GET", "/inventory/export/current", "u1", nil), fiber.StatusNotFound)
	expectStatus(t, ta.do(t, "POST", "/inventory/import/inventory", "u1", map[string]string{"csv": "name,quantity\nWidget,1\n"}), fiber.StatusNotFound)

	expectStatus(t, ta.do(t, "POST", "/inventory/periods", "u1", map[string]any{"name": "Q1"}), fiber.StatusCreated)
	resp = ta.do(t, "POST", "/inventory/import/inventory", "u1", map[string]string{
		"csv": "Product Name,Quantity,Notes\nwidget,7,top shelf\nNope,1,\n",
	})
	expectStatus(t, resp, fiber.StatusOK)
	sum = decode[domain.ImportSummary](t, resp)
	if sum.Created != 1 || sum.NotFound != 1 {
		t.Fatalf("unexpected inventory summary: %+v", sum)
	}

	resp = ta.do(t, "GET", "/inventory/export/current", "u1", nil)
	expectStatus(t, resp, fiber.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "inventory-"+today) {
		t.Fatalf("unexpected disposition %q", cd)
	}
	out, _ = io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(out), "Inventory Period,\"Q1\"\n") || !strings.Contains(string(out), `"top shelf"`) {
		t.Fatalf("unexpected current export: %s", out)
	}

	resp = ta.do(t, "GET", "/inventory/export/products", "u1", nil)
	expectStatus(t, resp, fiber.StatusOK)
	out, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(out), "Product ID,Product Name,Price,Categories,Quantity,Notes") {
		t.Fatalf("unexpected count sheet: %s", out)
	}

	resp = ta.do(t, "POST", "/inventory/import/products", "u1", map[string]string{"csv": "name,price\nBolt,0.25\n"})
	expectStatus(t, resp, fiber.StatusOK)
	if sum := decode[domain.ImportSummary](t, resp); sum.Created != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ta := newTestApp(t)
	ta.createProduct(t, "u1", "Lamp", 3)
	resp := ta.do(t, "GET", "/metrics", "", nil)
	expectStatus(t, resp, fiber.StatusOK)
	out, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(out), `inventory_http_requests_total{method="POST",path="/products/",status="201"}`) &&
		!strings.Contains(string(out), `inventory_http_requests_total{method="POST",path="/products",status="201"}`) {
		t.Fatalf("request counter missing:\n%s", out)
	}
}
