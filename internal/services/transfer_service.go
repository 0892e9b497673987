package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/csvio"
	"github.com/leji-a/Inventory-Tracker/internal/domain"
)

// TransferService runs CSV imports and exports.
type TransferService struct {
	Prods   ProductStore
	Cats    CategoryStore
	Links   LinkStore
	Images  ImageStore
	Periods PeriodStore
	Records RecordStore
	Catalog *CatalogService
	Metrics Recorder
}

func NewTransferService(prods ProductStore, cats CategoryStore, links LinkStore, images ImageStore,
	periods PeriodStore, records RecordStore, catalog *CatalogService, rec Recorder) *TransferService {
	return &TransferService{
		Prods: prods, Cats: cats, Links: links, Images: images,
		Periods: periods, Records: records, Catalog: catalog, Metrics: recorderOr(rec),
	}
}

const maxImportLines = 10000

var (
	productsHeader  = []string{"ID", "Name", "Price", "Quantity", "Categories", "Image URLs", "Created At"}
	currentHeader   = []string{"Product ID", "Product Name", "Price", "Categories", "Quantity", "Counted At", "Notes"}
	countSheetHeads = []string{"Product ID", "Product Name", "Price", "Categories", "Quantity", "Notes"}
)

func (s *TransferService) ExportProducts(ctx context.Context, owner string) ([]byte, error) {
	prods, err := s.Prods.ListAll(ctx, owner)
	if err != nil {
		return nil, err
	}
	views, err := s.Catalog.Views(ctx, prods)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csvio.NewWriter(&buf)
	w.Header(productsHeader...)
	for _, v := range views {
		urls := make([]string, len(v.Images))
		for i, img := range v.Images {
			urls[i] = img.URL
		}
		qty := csvio.Bare("")
		if v.Quantity != nil {
			qty = csvio.Int(*v.Quantity)
		}
		w.Row(
			csvio.Int(v.ID),
			csvio.Text(v.Name),
			csvio.Money(v.Price),
			qty,
			csvio.Text(strings.Join(v.CategoryNames, ";")),
			csvio.Text(strings.Join(urls, ";")),
			csvio.Text(v.CreatedAt),
		)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportCurrentInventory writes the active period's records behind a short
// preamble naming the period.
func (s *TransferService) ExportCurrentInventory(ctx context.Context, owner string) ([]byte, error) {
	p, err := s.Periods.Active(ctx, owner)
	if err != nil {
		return nil, notFound(err, "no active inventory period")
	}
	rows, err := s.Records.ForPeriod(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ProductID
	}
	cats, err := s.categoryNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csvio.NewWriter(&buf)
	writePreamble(w, p)
	w.Header(currentHeader...)
	for _, r := range rows {
		w.Row(
			csvio.Int(r.ProductID),
			csvio.Text(r.ProductName),
			csvio.Money(r.ProductPrice),
			csvio.Text(cats[r.ProductID]),
			csvio.Int(r.Quantity),
			csvio.Text(r.CountedAt),
			csvio.Text(deref(r.Notes)),
		)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportCountSheet lists every product for counting, prefilled from the
// active period when there is one. ImportInventory accepts its output.
func (s *TransferService) ExportCountSheet(ctx context.Context, owner string) ([]byte, error) {
	prods, err := s.Prods.ListAll(ctx, owner)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(prods))
	for i, p := range prods {
		ids[i] = p.ID
	}
	cats, err := s.categoryNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csvio.NewWriter(&buf)
	counted := map[int64]domain.RecordRow{}
	period, err := s.Periods.Active(ctx, owner)
	switch {
	case err == nil:
		rows, err := s.Records.ForPeriod(ctx, period.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			counted[r.ProductID] = r
		}
		writePreamble(w, period)
	case !apperr.Is(err, apperr.NotFound):
		return nil, err
	}

	w.Header(countSheetHeads...)
	for _, p := range prods {
		qty, notes := csvio.Bare(""), ""
		if r, ok := counted[p.ID]; ok {
			qty, notes = csvio.Int(r.Quantity), deref(r.Notes)
		}
		w.Row(csvio.Int(p.ID), csvio.Text(p.Name), csvio.Money(p.Price), csvio.Text(cats[p.ID]), qty, csvio.Text(notes))
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePreamble(w *csvio.Writer, p domain.InventoryPeriod) {
	w.Row(csvio.Bare("Inventory Period"), csvio.Text(p.Name))
	w.Row(csvio.Bare("Start Date"), csvio.Bare(p.StartDate))
	w.Blank()
}

func (s *TransferService) categoryNames(ctx context.Context, productIDs []int64) (map[int64]string, error) {
	links, err := s.Links.ForProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	names := map[int64][]string{}
	for _, l := range links {
		names[l.ProductID] = append(names[l.ProductID], l.CategoryName)
	}
	out := make(map[int64]string, len(names))
	for id, n := range names {
		out[id] = strings.Join(n, ";")
	}
	return out, nil
}

// rowError is a failure confined to one CSV row; the batch carries on.
type rowError struct{ msg string }

func (e rowError) Error() string { return e.msg }

func rowErrorf(format string, args ...any) error { return rowError{msg: fmt.Sprintf(format, args...)} }

// header maps lower-cased, trimmed column labels to their index.
type header map[string]int

func parseHeader(fields []string) header {
	h := header{}
	for i, f := range fields {
		key := strings.ToLower(strings.TrimSpace(f))
		if _, dup := h[key]; !dup && key != "" {
			h[key] = i
		}
	}
	return h
}

// col returns the index of the first present alias, or -1.
func (h header) col(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i
		}
	}
	return -1
}

func cell(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func importLines(doc string) ([]string, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, apperr.Invalid("csv is empty")
	}
	lines := csvio.Lines(doc)
	if len(lines) > maxImportLines {
		return nil, apperr.Invalid("csv has more than %d lines", maxImportLines)
	}
	return lines, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
