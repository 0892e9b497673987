package services

import (
	"context"
	"time"

	"github.com/leji-a/Inventory-Tracker/internal/domain"
)

// The interfaces below are the slices of the repos each service needs.

type ProductStore interface {
	Count(ctx context.Context, owner string) (int, error)
	List(ctx context.Context, owner string, limit, offset int) ([]domain.Product, error)
	ListAll(ctx context.Context, owner string) ([]domain.Product, error)
	Get(ctx context.Context, owner string, id int64) (domain.Product, error)
	Create(ctx context.Context, p domain.Product) (int64, error)
	Update(ctx context.Context, owner string, id int64, patch domain.ProductPatch) error
	Delete(ctx context.Context, owner string, id int64) error
}

type CategoryStore interface {
	Count(ctx context.Context, owner string) (int, error)
	List(ctx context.Context, owner string, limit, offset int) ([]domain.Category, error)
	Get(ctx context.Context, owner string, id int64) (domain.Category, error)
	GetByName(ctx context.Context, owner, name string) (domain.Category, error)
	Create(ctx context.Context, c domain.Category) (int64, error)
	Update(ctx context.Context, owner string, id int64, patch domain.CategoryPatch) error
	Delete(ctx context.Context, owner string, id int64) error
	OwnedIDs(ctx context.Context, owner string, ids []int64) ([]int64, error)
}

type LinkStore interface {
	ForProducts(ctx context.Context, productIDs []int64) ([]domain.ProductCategoryRow, error)
	Insert(ctx context.Context, productID int64, categoryIDs []int64) error
	Link(ctx context.Context, productID, categoryID int64) error
	DeleteForProduct(ctx context.Context, productID int64) error
}

type ImageStore interface {
	ForProducts(ctx context.Context, productIDs []int64) ([]domain.ProductImage, error)
	ForProduct(ctx context.Context, productID int64) ([]domain.ProductImage, error)
	Get(ctx context.Context, productID, imageID int64) (domain.ProductImage, error)
	Count(ctx context.Context, productID int64) (int, error)
	Append(ctx context.Context, img domain.ProductImage) (domain.ProductImage, error)
	Delete(ctx context.Context, productID, imageID int64) error
	CloseGap(ctx context.Context, productID int64, after int) error
	SetOrder(ctx context.Context, productID, imageID int64, order int) error
}

type PeriodStore interface {
	List(ctx context.Context, owner string) ([]domain.InventoryPeriod, error)
	Get(ctx context.Context, owner string, id int64) (domain.InventoryPeriod, error)
	Active(ctx context.Context, owner string) (domain.InventoryPeriod, error)
	GetByName(ctx context.Context, owner, name string) (domain.InventoryPeriod, error)
	CloseActive(ctx context.Context, owner, endDate string) (int64, error)
	Close(ctx context.Context, owner string, id int64, endDate string) error
	Create(ctx context.Context, p domain.InventoryPeriod) (int64, error)
}

type RecordStore interface {
	Upsert(ctx context.Context, rec domain.InventoryRecord) (domain.InventoryRecord, error)
	UpsertBatch(ctx context.Context, recs []domain.InventoryRecord) error
	Get(ctx context.Context, periodID, productID int64) (domain.InventoryRecord, error)
	ForPeriod(ctx context.Context, periodID int64) ([]domain.RecordRow, error)
	ForProduct(ctx context.Context, productID int64) ([]domain.HistoryRow, error)
	Delete(ctx context.Context, periodID, productID int64) error
}

// ObjectStore holds uploaded image bytes and issues their public URLs.
type ObjectStore interface {
	Put(ctx context.Context, path, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

// Recorder receives workflow counters; *metrics.Metrics satisfies it.
type Recorder interface {
	ImportRow(kind, outcome string)
	ImageOp(op string)
	PeriodCreated()
}

type nopRecorder struct{}

func (nopRecorder) ImportRow(string, string) {}
func (nopRecorder) ImageOp(string)           {}
func (nopRecorder) PeriodCreated()           {}

func recorderOr(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// Page is one page of a listing plus the unpaged total.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}

func offset(page, limit int) int { return (page - 1) * limit }

func today() string { return time.Now().UTC().Format(domain.DateLayout) }
