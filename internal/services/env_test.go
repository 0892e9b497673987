package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/leji-a/Inventory-Tracker/internal/repos"
	"github.com/leji-a/Inventory-Tracker/internal/services"
	"github.com/leji-a/Inventory-Tracker/internal/storage"
)

type env struct {
	db        *sqlx.DB
	mediaDir  string
	prods     *repos.ProductRepo
	cats      *repos.CategoryRepo
	images    *repos.ImageRepo
	periods   *repos.PeriodRepo
	records   *repos.RecordRepo
	catalog   *services.CatalogService
	category  *services.CategoryService
	imageSvc  *services.ImageService
	inventory *services.InventoryService
	transfer  *services.TransferService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dir := t.TempDir()
	disk, err := storage.NewDisk(dir, "http://localhost/media")
	if err != nil {
		t.Fatal(err)
	}

	e := &env{
		db:       db,
		mediaDir: dir,
		prods:    repos.NewProductRepo(db),
		cats:     repos.NewCategoryRepo(db),
		images:   repos.NewImageRepo(db),
		periods:  repos.NewPeriodRepo(db),
		records:  repos.NewRecordRepo(db),
	}
	links := repos.NewLinkRepo(db)
	e.catalog = services.NewCatalogService(e.prods, e.cats, links, e.images, disk)
	e.category = services.NewCategoryService(e.cats)
	e.imageSvc = services.NewImageService(e.prods, e.images, disk, e.catalog, nil)
	e.inventory = services.NewInventoryService(e.periods, e.records, e.prods, nil)
	e.transfer = services.NewTransferService(e.prods, e.cats, links, e.images, e.periods, e.records, e.catalog, nil)
	return e
}

func ptr[T any](v T) *T { return &v }
