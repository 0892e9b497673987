package repos_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/domain"
	"github.com/leji-a/Inventory-Tracker/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCategoryNameConflictIsTranslated(t *testing.T) {
	ctx := context.Background()
	cats := repos.NewCategoryRepo(memdb(t))
	if _, err := cats.Create(ctx, domain.Category{OwnerID: "u1", Name: "Tools"}); err != nil {
		t.Fatal(err)
	}
	_, err := cats.Create(ctx, domain.Category{OwnerID: "u1", Name: "Tools"})
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("want conflict, got %v", err)
	}
	// same name, other owner is fine
	if _, err := cats.Create(ctx, domain.Category{OwnerID: "u2", Name: "Tools"}); err != nil {
		t.Fatalf("other owner: %v", err)
	}
}

func TestMissingRowIsNotFound(t *testing.T) {
	ctx := context.Background()
	products := repos.NewProductRepo(memdb(t))
	_, err := products.Get(ctx, "u1", 42)
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("want not found, got %v", err)
	}
	if err := products.Delete(ctx, "u1", 42); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("delete: want not found, got %v", err)
	}
}

func TestForeignKeyIsReference(t *testing.T) {
	ctx := context.Background()
	links := repos.NewLinkRepo(memdb(t))
	err := links.Insert(ctx, 999, []int64{1})
	if apperr.KindOf(err) != apperr.Reference {
		t.Fatalf("want reference, got %v", err)
	}
}

func TestSecondActivePeriodRejectedByIndex(t *testing.T) {
	ctx := context.Background()
	periods := repos.NewPeriodRepo(memdb(t))
	p := domain.InventoryPeriod{OwnerID: "u1", Name: "Jan", StartDate: "2026-01-01", Status: domain.PeriodActive}
	if _, err := periods.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.Name = "Feb"
	_, err := periods.Create(ctx, p)
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("want conflict for second active period, got %v", err)
	}
	p.Status = domain.PeriodClosed
	if _, err := periods.Create(ctx, p); err != nil {
		t.Fatalf("closed period should insert: %v", err)
	}
}

func TestImageAppendAndCloseGap(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	products := repos.NewProductRepo(db)
	images := repos.NewImageRepo(db)

	pid, err := products.Create(ctx, domain.Product{OwnerID: "u1", Name: "Lamp", Price: 10})
	if err != nil {
		t.Fatal(err)
	}
	var ids []int64
	for i := 0; i < 3; i++ {
		img, err := images.Append(ctx, domain.ProductImage{ProductID: pid, ImageURL: "https://x/y.png"})
		if err != nil {
			t.Fatal(err)
		}
		if img.DisplayOrder != i {
			t.Fatalf("image %d got order %d", i, img.DisplayOrder)
		}
		ids = append(ids, img.ID)
	}
	if err := images.Delete(ctx, pid, ids[1]); err != nil {
		t.Fatal(err)
	}
	if err := images.CloseGap(ctx, pid, 1); err != nil {
		t.Fatal(err)
	}
	left, err := images.ForProduct(ctx, pid)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 2 || left[0].DisplayOrder != 0 || left[1].DisplayOrder != 1 || left[1].ID != ids[2] {
		t.Fatalf("unexpected images after compaction: %+v", left)
	}
}

func TestRecordUpsertBatchOverwrites(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	products := repos.NewProductRepo(db)
	periods := repos.NewPeriodRepo(db)
	records := repos.NewRecordRepo(db)

	pid, _ := products.Create(ctx, domain.Product{OwnerID: "u1", Name: "Lamp", Price: 10})
	per, err := periods.Create(ctx, domain.InventoryPeriod{OwnerID: "u1", Name: "Q1", StartDate: "2026-01-01", Status: domain.PeriodActive})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := records.Upsert(ctx, domain.InventoryRecord{ProductID: pid, PeriodID: per, Quantity: 3}); err != nil {
		t.Fatal(err)
	}
	if err := records.UpsertBatch(ctx, []domain.InventoryRecord{{ProductID: pid, PeriodID: per, Quantity: 9}}); err != nil {
		t.Fatal(err)
	}
	rows, err := records.ForPeriod(ctx, per)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Quantity != 9 || rows[0].ProductName != "Lamp" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := repos.OpenDB("mysql", "x"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
