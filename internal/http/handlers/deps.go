package handlers

import (
	"github.com/jmoiron/sqlx"

	"github.com/leji-a/Inventory-Tracker/internal/repos"
	"github.com/leji-a/Inventory-Tracker/internal/services"
)

type Deps struct {
	ProductHandler   *ProductHandler
	CategoryHandler  *CategoryHandler
	ImageHandler     *ImageHandler
	InventoryHandler *InventoryHandler
	TransferHandler  *TransferHandler
}

// NewDeps wires repositories, services and handlers over one database and
// object store. rec may be nil.
func NewDeps(db *sqlx.DB, objects services.ObjectStore, rec services.Recorder) *Deps {
	prodRepo := repos.NewProductRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	linkRepo := repos.NewLinkRepo(db)
	imgRepo := repos.NewImageRepo(db)
	periodRepo := repos.NewPeriodRepo(db)
	recordRepo := repos.NewRecordRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo, catRepo, linkRepo, imgRepo, objects)
	categorySvc := services.NewCategoryService(catRepo)
	imageSvc := services.NewImageService(prodRepo, imgRepo, objects, catalogSvc, rec)
	invSvc := services.NewInventoryService(periodRepo, recordRepo, prodRepo, rec)
	transferSvc := services.NewTransferService(prodRepo, catRepo, linkRepo, imgRepo, periodRepo, recordRepo, catalogSvc, rec)

	return &Deps{
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		CategoryHandler:  &CategoryHandler{Categories: categorySvc},
		ImageHandler:     &ImageHandler{Images: imageSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		TransferHandler:  &TransferHandler{Transfer: transferSvc},
	}
}
