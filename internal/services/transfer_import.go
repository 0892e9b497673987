package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/csvio"
	"github.com/leji-a/Inventory-Tracker/internal/domain"
	"github.com/leji-a/Inventory-Tracker/internal/validate"
)

// errSkip marks a row that is left alone on purpose (duplicate, nothing to do).
type errSkip struct{ msg string }

func (e errSkip) Error() string { return e.msg }

type productCols struct {
	name, price, qty, cats, images int
}

// ImportProducts creates one product per row. Rows succeed or fail on their
// own; only an unusable document or a store failure before the first row
// fails the request. Row numbers are 1-based source lines.
func (s *TransferService) ImportProducts(ctx context.Context, owner, doc string) (domain.ImportSummary, error) {
	lines, err := importLines(doc)
	if err != nil {
		return domain.ImportSummary{}, err
	}
	hi := firstNonBlank(lines)
	if hi < 0 {
		return domain.ImportSummary{}, apperr.Invalid("csv is empty")
	}
	h := parseHeader(csvio.ParseLine(lines[hi]))
	cols := productCols{
		name:   h.col("name", "product name"),
		price:  h.col("price"),
		qty:    h.col("quantity", "qty"),
		cats:   h.col("categories", "category"),
		images: h.col("image urls", "image url", "image_urls", "image_url", "images"),
	}
	if cols.name < 0 || cols.price < 0 {
		return domain.ImportSummary{}, apperr.Invalid("csv header must include name and price columns")
	}

	existing, err := s.Prods.ListAll(ctx, owner)
	if err != nil {
		return domain.ImportSummary{}, err
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[strings.ToLower(p.Name)] = true
	}
	resolver := NewCategoryResolver(s.Cats)

	sum := domain.ImportSummary{Messages: []domain.RowMessage{}}
	for i := hi + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		row := i + 1
		warnings, err := s.importProductRow(ctx, owner, csvio.ParseLine(lines[i]), cols, known, resolver)

		var skip errSkip
		var rerr rowError
		switch {
		case err == nil:
			sum.Created++
			s.Metrics.ImportRow("products", "created")
			for _, w := range warnings {
				sum.Messages = append(sum.Messages, domain.RowMessage{Row: row, Status: domain.RowWarning, Message: w})
			}
		case errors.As(err, &skip):
			sum.Skipped++
			s.Metrics.ImportRow("products", "skipped")
			sum.Messages = append(sum.Messages, domain.RowMessage{Row: row, Status: domain.RowSkipped, Message: skip.msg})
		case errors.As(err, &rerr):
			sum.Failed++
			s.Metrics.ImportRow("products", "failed")
			sum.Messages = append(sum.Messages, domain.RowMessage{Row: row, Status: domain.RowFailed, Message: rerr.msg})
		default:
			sum.Failed++
			s.Metrics.ImportRow("products", "failed")
			sum.Messages = append(sum.Messages, domain.RowMessage{Row: row, Status: domain.RowFailed, Message: "could not create product: " + apperr.Message(err)})
		}
	}
	return sum, nil
}

func (s *TransferService) importProductRow(ctx context.Context, owner string, fields []string, cols productCols,
	known map[string]bool, resolver *CategoryResolver) ([]string, error) {
	name, ok := validate.Name(cell(fields, cols.name))
	if !ok {
		return nil, rowErrorf("name is required")
	}
	key := strings.ToLower(name)
	if known[key] {
		return nil, errSkip{msg: fmt.Sprintf("duplicate product name %q", name)}
	}
	rawPrice := cell(fields, cols.price)
	price, ok := validate.ParsePrice(rawPrice)
	if !ok {
		return nil, rowErrorf("invalid price %q", rawPrice)
	}
	var qty *int64
	if raw := cell(fields, cols.qty); raw != "" {
		n, ok := validate.ParseQuantity(raw)
		if !ok {
			return nil, rowErrorf("invalid quantity %q", raw)
		}
		qty = &n
	}

	id, err := s.Prods.Create(ctx, domain.Product{OwnerID: owner, Name: name, Price: price, Quantity: qty})
	if err != nil {
		return nil, err
	}
	known[key] = true

	var warnings []string
	for _, cname := range splitList(cell(fields, cols.cats)) {
		cid, err := resolver.Resolve(ctx, owner, cname)
		if err == nil {
			err = s.Links.Link(ctx, id, cid)
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("category %q not linked: %s", cname, apperr.Message(err)))
		}
	}
	for i, raw := range splitList(cell(fields, cols.images)) {
		if i >= MaxImagesPerProduct {
			warnings = append(warnings, fmt.Sprintf("image %q skipped: limit of %d images reached", raw, MaxImagesPerProduct))
			continue
		}
		url, ok := validate.ImageURL(raw)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("image %q skipped: not an http(s) URL", raw))
			continue
		}
		if _, err := s.Images.Append(ctx, domain.ProductImage{ProductID: id, ImageURL: url}); err != nil {
			warnings = append(warnings, fmt.Sprintf("image %q not added: %s", raw, apperr.Message(err)))
		}
	}
	return warnings, nil
}

// ImportInventory records counts for the active period. The header row is
// the first line with name and quantity columns, so the preamble written by
// the exports is tolerated. Matched rows are written with one batched upsert at the end;
// a product listed twice keeps its last row.
func (s *TransferService) ImportInventory(ctx context.Context, owner, doc string) (domain.ImportSummary, error) {
	period, err := s.Periods.Active(ctx, owner)
	if err != nil {
		return domain.ImportSummary{}, notFound(err, "no active inventory period")
	}
	lines, err := importLines(doc)
	if err != nil {
		return domain.ImportSummary{}, err
	}

	// The preamble can hold a period literally called "Name", so the header
	// is the first line naming both a product and a quantity column.
	hi, nameCol, qtyCol, sawName := -1, -1, -1, false
	var h header
	for i, l := range lines {
		h = parseHeader(csvio.ParseLine(l))
		nameCol, qtyCol = h.col("product name", "name"), h.col("quantity", "qty", "count")
		if nameCol < 0 {
			continue
		}
		sawName = true
		if qtyCol >= 0 {
			hi = i
			break
		}
	}
	switch {
	case hi >= 0:
	case sawName:
		return domain.ImportSummary{}, apperr.Invalid("csv header must include a quantity column")
	default:
		return domain.ImportSummary{}, apperr.Invalid("csv header with a name column not found")
	}
	notesCol := h.col("notes")

	prods, err := s.Prods.ListAll(ctx, owner)
	if err != nil {
		return domain.ImportSummary{}, err
	}
	byName := make(map[string]int64, len(prods))
	for _, p := range prods {
		key := strings.ToLower(p.Name)
		if _, dup := byName[key]; !dup {
			byName[key] = p.ID
		}
	}

	sum := domain.ImportSummary{Messages: []domain.RowMessage{}}
	fail := func(row int, status, msg string) {
		sum.Messages = append(sum.Messages, domain.RowMessage{Row: row, Status: status, Message: msg})
		switch status {
		case domain.RowFailed:
			sum.Failed++
		case domain.RowSkipped:
			sum.Skipped++
		case domain.RowNotFound:
			sum.NotFound++
		}
		s.Metrics.ImportRow("inventory", status)
	}

	var recs []domain.InventoryRecord
	slot := map[int64]int{}
	for i := hi + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		row := i + 1
		fields := csvio.ParseLine(lines[i])

		name := cell(fields, nameCol)
		if name == "" {
			fail(row, domain.RowFailed, "product name is required")
			continue
		}
		rawQty := cell(fields, qtyCol)
		if rawQty == "" {
			fail(row, domain.RowSkipped, fmt.Sprintf("no quantity for %q", name))
			continue
		}
		qty, ok := validate.ParseQuantity(rawQty)
		if !ok {
			fail(row, domain.RowFailed, fmt.Sprintf("invalid quantity %q", rawQty))
			continue
		}
		notes, ok := validate.Notes(cell(fields, notesCol))
		if !ok {
			fail(row, domain.RowFailed, "notes are too long")
			continue
		}
		pid, ok := byName[strings.ToLower(name)]
		if !ok {
			fail(row, domain.RowNotFound, fmt.Sprintf("product %q not found", name))
			continue
		}

		rec := domain.InventoryRecord{ProductID: pid, PeriodID: period.ID, Quantity: qty}
		if notes != "" {
			rec.Notes = &notes
		}
		if j, seen := slot[pid]; seen {
			recs[j] = rec
		} else {
			slot[pid] = len(recs)
			recs = append(recs, rec)
		}
		sum.Created++
		s.Metrics.ImportRow("inventory", "created")
	}

	if err := s.Records.UpsertBatch(ctx, recs); err != nil {
		return domain.ImportSummary{}, fmt.Errorf("write inventory counts: %w", err)
	}
	return sum, nil
}

func firstNonBlank(lines []string) int {
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			return i
		}
	}
	return -1
}
