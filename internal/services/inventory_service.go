package services

import (
	"context"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/domain"
	"github.com/leji-a/Inventory-Tracker/internal/validate"
)

type InventoryService struct {
	Periods PeriodStore
	Records RecordStore
	Prods   ProductStore
	Metrics Recorder
}

func NewInventoryService(periods PeriodStore, records RecordStore, prods ProductStore, rec Recorder) *InventoryService {
	return &InventoryService{Periods: periods, Records: records, Prods: prods, Metrics: recorderOr(rec)}
}

type PeriodInput struct {
	Name      string
	StartDate string // YYYY-MM-DD, today when empty
	Notes     *string
}

// CreatePeriod closes the owner's active period (end date today) and opens
// a new active one. A concurrent create that slips in between is rejected
// by the store's one-active-period index and surfaces as Conflict.
func (s *InventoryService) CreatePeriod(ctx context.Context, owner string, in PeriodInput) (domain.InventoryPeriod, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.InventoryPeriod{}, apperr.Invalid("name is required")
	}
	start := today()
	if in.StartDate != "" {
		if start, ok = validate.Date(in.StartDate); !ok {
			return domain.InventoryPeriod{}, apperr.Invalid("start_date must be YYYY-MM-DD")
		}
	}
	notes, err := cleanNotes(in.Notes)
	if err != nil {
		return domain.InventoryPeriod{}, err
	}

	// A taken name must be rejected before the active period is closed.
	switch _, err := s.Periods.GetByName(ctx, owner, name); {
	case err == nil:
		return domain.InventoryPeriod{}, apperr.New(apperr.Conflict, "period name already exists")
	case !apperr.Is(err, apperr.NotFound):
		return domain.InventoryPeriod{}, err
	}

	if _, err := s.Periods.CloseActive(ctx, owner, today()); err != nil {
		return domain.InventoryPeriod{}, err
	}
	id, err := s.Periods.Create(ctx, domain.InventoryPeriod{
		OwnerID:   owner,
		Name:      name,
		StartDate: start,
		Status:    domain.PeriodActive,
		Notes:     notes,
	})
	if apperr.Is(err, apperr.Conflict) {
		if _, aerr := s.Periods.Active(ctx, owner); aerr == nil {
			return domain.InventoryPeriod{}, apperr.Wrap(apperr.Conflict, err, "another period became active concurrently")
		}
		return domain.InventoryPeriod{}, apperr.Wrap(apperr.Conflict, err, "period name already exists")
	}
	if err != nil {
		return domain.InventoryPeriod{}, err
	}
	s.Metrics.PeriodCreated()
	return s.Periods.Get(ctx, owner, id)
}

func (s *InventoryService) ClosePeriod(ctx context.Context, owner string, id int64) (domain.InventoryPeriod, error) {
	if err := s.Periods.Close(ctx, owner, id, today()); err != nil {
		return domain.InventoryPeriod{}, notFound(err, "period not found")
	}
	return s.Periods.Get(ctx, owner, id)
}

func (s *InventoryService) ActivePeriod(ctx context.Context, owner string) (domain.InventoryPeriod, error) {
	p, err := s.Periods.Active(ctx, owner)
	return p, notFound(err, "no active inventory period")
}

func (s *InventoryService) ListPeriods(ctx context.Context, owner string) ([]domain.InventoryPeriod, error) {
	return s.Periods.List(ctx, owner)
}

// AddRecord upserts the count for (product, period). Closed periods accept
// records too.
func (s *InventoryService) AddRecord(ctx context.Context, owner string, periodID, productID, quantity int64, notes *string) (domain.InventoryRecord, error) {
	if !validate.Quantity(quantity) {
		return domain.InventoryRecord{}, apperr.Invalid("quantity must not be negative")
	}
	n, err := cleanNotes(notes)
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	if _, err := s.Periods.Get(ctx, owner, periodID); err != nil {
		return domain.InventoryRecord{}, notFound(err, "period not found")
	}
	if _, err := s.Prods.Get(ctx, owner, productID); err != nil {
		return domain.InventoryRecord{}, notFound(err, "product not found")
	}
	return s.Records.Upsert(ctx, domain.InventoryRecord{PeriodID: periodID, ProductID: productID, Quantity: quantity, Notes: n})
}

func (s *InventoryService) PeriodRecords(ctx context.Context, owner string, periodID int64) ([]domain.RecordRow, error) {
	if _, err := s.Periods.Get(ctx, owner, periodID); err != nil {
		return nil, notFound(err, "period not found")
	}
	return s.Records.ForPeriod(ctx, periodID)
}

// CurrentInventory is empty, not an error, when no period is active.
func (s *InventoryService) CurrentInventory(ctx context.Context, owner string) (domain.CurrentInventory, error) {
	p, err := s.Periods.Active(ctx, owner)
	if apperr.Is(err, apperr.NotFound) {
		return domain.CurrentInventory{Records: []domain.RecordRow{}}, nil
	}
	if err != nil {
		return domain.CurrentInventory{}, err
	}
	rows, err := s.Records.ForPeriod(ctx, p.ID)
	if err != nil {
		return domain.CurrentInventory{}, err
	}
	return domain.CurrentInventory{Period: &p, Records: rows}, nil
}

func (s *InventoryService) ProductHistory(ctx context.Context, owner string, productID int64) ([]domain.HistoryRow, error) {
	if _, err := s.Prods.Get(ctx, owner, productID); err != nil {
		return nil, notFound(err, "product not found")
	}
	return s.Records.ForProduct(ctx, productID)
}

func (s *InventoryService) DeleteRecord(ctx context.Context, owner string, periodID, productID int64) error {
	if _, err := s.Periods.Get(ctx, owner, periodID); err != nil {
		return notFound(err, "period not found")
	}
	if _, err := s.Records.Get(ctx, periodID, productID); err != nil {
		return notFound(err, "record not found")
	}
	return notFound(s.Records.Delete(ctx, periodID, productID), "record not found")
}

func cleanNotes(n *string) (*string, error) {
	if n == nil {
		return nil, nil
	}
	v, ok := validate.Notes(*n)
	if !ok {
		return nil, apperr.Invalid("notes are too long")
	}
	if v == "" {
		return nil, nil
	}
	return &v, nil
}
