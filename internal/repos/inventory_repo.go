package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/leji-a/Inventory-Tracker/internal/domain"
)

type PeriodRepo struct{ db *sqlx.DB }

func NewPeriodRepo(db *sqlx.DB) *PeriodRepo { return &PeriodRepo{db: db} }

const periodCols = `id, owner_id, name, start_date, end_date, status, notes, created_at, updated_at`

// List returns the owner's periods, newest first.
func (r *PeriodRepo) List(ctx context.Context, owner string) ([]domain.InventoryPeriod, error) {
	out := []domain.InventoryPeriod{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+periodCols+`
		FROM inventory_periods
		WHERE owner_id = ?
		ORDER BY start_date DESC, id DESC
	`), owner)
	return out, Translate(err)
}

func (r *PeriodRepo) Get(ctx context.Context, owner string, id int64) (domain.InventoryPeriod, error) {
	var p domain.InventoryPeriod
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
		SELECT `+periodCols+` FROM inventory_periods WHERE owner_id = ? AND id = ?
	`), owner, id)
	return p, Translate(err)
}

// Active returns NotFound when the owner has no active period.
func (r *PeriodRepo) Active(ctx context.Context, owner string) (domain.InventoryPeriod, error) {
	var p domain.InventoryPeriod
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
		SELECT `+periodCols+` FROM inventory_periods WHERE owner_id = ? AND status = 'active'
	`), owner)
	return p, Translate(err)
}

// GetByName matches exactly, the same way the (owner_id, name) constraint does.
func (r *PeriodRepo) GetByName(ctx context.Context, owner, name string) (domain.InventoryPeriod, error) {
	var p domain.InventoryPeriod
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
		SELECT `+periodCols+` FROM inventory_periods WHERE owner_id = ? AND name = ?
	`), owner, name)
	return p, Translate(err)
}

// CloseActive closes whatever period is active for owner. Zero rows is fine.
func (r *PeriodRepo) CloseActive(ctx context.Context, owner, endDate string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE inventory_periods
		SET status = 'closed', end_date = ?, updated_at = ?
		WHERE owner_id = ? AND status = 'active'
	`), endDate, stamp(), owner)
	if err != nil {
		return 0, Translate(err)
	}
	n, err := res.RowsAffected()
	return n, Translate(err)
}

func (r *PeriodRepo) Close(ctx context.Context, owner string, id int64, endDate string) error {
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE inventory_periods
		SET status = 'closed', end_date = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?
	`), endDate, stamp(), owner, id))
}

func (r *PeriodRepo) Create(ctx context.Context, p domain.InventoryPeriod) (int64, error) {
	now := stamp()
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO inventory_periods(owner_id, name, start_date, end_date, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), p.OwnerID, p.Name, p.StartDate, p.EndDate, p.Status, p.Notes, now, now)
	return id, Translate(err)
}

type RecordRepo struct{ db *sqlx.DB }

func NewRecordRepo(db *sqlx.DB) *RecordRepo { return &RecordRepo{db: db} }

// upsertBatchRows bounds the bind parameters of one batched upsert.
const upsertBatchRows = 500

const upsertConflict = `
	ON CONFLICT (product_id, period_id) DO UPDATE
	SET quantity = excluded.quantity, notes = excluded.notes, counted_at = excluded.counted_at`

// Upsert writes the record for (product, period), overwriting quantity,
// notes and counted_at when it already exists.
func (r *RecordRepo) Upsert(ctx context.Context, rec domain.InventoryRecord) (domain.InventoryRecord, error) {
	rec.CountedAt = stamp()
	err := r.db.GetContext(ctx, &rec.ID, r.db.Rebind(`
		INSERT INTO inventory_records(product_id, period_id, quantity, counted_at, notes)
		VALUES (?, ?, ?, ?, ?)`+upsertConflict+`
		RETURNING id
	`), rec.ProductID, rec.PeriodID, rec.Quantity, rec.CountedAt, rec.Notes)
	return rec, Translate(err)
}

// UpsertBatch writes recs with one multi-row statement per upsertBatchRows.
// Callers must not repeat a (product, period) pair within recs.
func (r *RecordRepo) UpsertBatch(ctx context.Context, recs []domain.InventoryRecord) error {
	now := stamp()
	for start := 0; start < len(recs); start += upsertBatchRows {
		end := min(start+upsertBatchRows, len(recs))
		chunk := recs[start:end]
		values := make([]string, len(chunk))
		args := make([]any, 0, 5*len(chunk))
		for i, rec := range chunk {
			values[i] = "(?, ?, ?, ?, ?)"
			args = append(args, rec.ProductID, rec.PeriodID, rec.Quantity, now, rec.Notes)
		}
		q := `INSERT INTO inventory_records(product_id, period_id, quantity, counted_at, notes) VALUES ` +
			strings.Join(values, ", ") + upsertConflict
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...); err != nil {
			return Translate(err)
		}
	}
	return nil
}

func (r *RecordRepo) Get(ctx context.Context, periodID, productID int64) (domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		SELECT id, product_id, period_id, quantity, counted_at, notes
		FROM inventory_records
		WHERE period_id = ? AND product_id = ?
	`), periodID, productID)
	return rec, Translate(err)
}

// ForPeriod joins each record of the period with its product, ordered by product id.
func (r *RecordRepo) ForPeriod(ctx context.Context, periodID int64) ([]domain.RecordRow, error) {
	out := []domain.RecordRow{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT ir.id, ir.product_id, ir.period_id, ir.quantity, ir.counted_at, ir.notes,
		       p.name AS product_name, p.price AS product_price
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE ir.period_id = ?
		ORDER BY p.id
	`), periodID)
	return out, Translate(err)
}

// ForProduct returns the product's records across all periods, most recent first.
func (r *RecordRepo) ForProduct(ctx context.Context, productID int64) ([]domain.HistoryRow, error) {
	out := []domain.HistoryRow{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT ir.id, ir.product_id, ir.period_id, ir.quantity, ir.counted_at, ir.notes,
		       ip.name AS period_name, ip.start_date AS period_start_date, ip.status AS period_status
		FROM inventory_records ir
		JOIN inventory_periods ip ON ip.id = ir.period_id
		WHERE ir.product_id = ?
		ORDER BY ir.counted_at DESC, ir.id DESC
	`), productID)
	return out, Translate(err)
}

func (r *RecordRepo) Delete(ctx context.Context, periodID, productID int64) error {
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM inventory_records WHERE period_id = ? AND product_id = ?
	`), periodID, productID))
}
