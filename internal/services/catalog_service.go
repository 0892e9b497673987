package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/domain"
	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/validate"
)

type CatalogService struct {
	Prods   ProductStore
	Cats    CategoryStore
	Links   LinkStore
	Images  ImageStore
	Objects ObjectStore
}

func NewCatalogService(prods ProductStore, cats CategoryStore, links LinkStore, images ImageStore, objects ObjectStore) *CatalogService {
	return &CatalogService{Prods: prods, Cats: cats, Links: links, Images: images, Objects: objects}
}

type ProductInput struct {
	Name        string
	Price       float64
	Quantity    *int64
	CategoryIDs []int64
}

// ProductUpdate is a partial update. A non-nil CategoryIDs, even empty,
// replaces every link of the product.
type ProductUpdate struct {
	Name        *string
	Price       *float64
	Quantity    *int64
	CategoryIDs *[]int64
}

func (s *CatalogService) List(ctx context.Context, owner string, page, limit int) (Page[domain.ProductView], error) {
	total, err := s.Prods.Count(ctx, owner)
	if err != nil {
		return Page[domain.ProductView]{}, err
	}
	prods, err := s.Prods.List(ctx, owner, limit, offset(page, limit))
	if err != nil {
		return Page[domain.ProductView]{}, err
	}
	views, err := s.Views(ctx, prods)
	if err != nil {
		return Page[domain.ProductView]{}, err
	}
	return Page[domain.ProductView]{Items: views, Total: total, Page: page, Limit: limit}, nil
}

func (s *CatalogService) Get(ctx context.Context, owner string, id int64) (domain.ProductView, error) {
	p, err := s.Prods.Get(ctx, owner, id)
	if err != nil {
		return domain.ProductView{}, notFound(err, "product not found")
	}
	views, err := s.Views(ctx, []domain.Product{p})
	if err != nil {
		return domain.ProductView{}, err
	}
	return views[0], nil
}

func (s *CatalogService) Create(ctx context.Context, owner string, in ProductInput) (domain.ProductView, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.ProductView{}, apperr.Invalid("name is required")
	}
	if !validate.Price(in.Price) {
		return domain.ProductView{}, apperr.Invalid("price must be greater than 0")
	}
	if in.Quantity != nil && !validate.Quantity(*in.Quantity) {
		return domain.ProductView{}, apperr.Invalid("quantity must not be negative")
	}
	catIDs, err := s.ownedCategories(ctx, owner, in.CategoryIDs)
	if err != nil {
		return domain.ProductView{}, err
	}

	id, err := s.Prods.Create(ctx, domain.Product{OwnerID: owner, Name: name, Price: in.Price, Quantity: in.Quantity})
	if err != nil {
		return domain.ProductView{}, err
	}
	if err := s.Links.Insert(ctx, id, catIDs); err != nil {
		// No partial products: undo the insert.
		if derr := s.Prods.Delete(ctx, owner, id); derr != nil {
			applog.L().Error("product.create.compensate", zap.Int64("product_id", id), zap.Error(derr))
		}
		return domain.ProductView{}, fmt.Errorf("link categories: %w", err)
	}
	return s.Get(ctx, owner, id)
}

func (s *CatalogService) Update(ctx context.Context, owner string, id int64, in ProductUpdate) (domain.ProductView, error) {
	if _, err := s.Prods.Get(ctx, owner, id); err != nil {
		return domain.ProductView{}, notFound(err, "product not found")
	}

	var patch domain.ProductPatch
	if in.Name != nil {
		name, ok := validate.Name(*in.Name)
		if !ok {
			return domain.ProductView{}, apperr.Invalid("name must not be empty")
		}
		patch.Name = &name
	}
	if in.Price != nil {
		if !validate.Price(*in.Price) {
			return domain.ProductView{}, apperr.Invalid("price must be greater than 0")
		}
		patch.Price = in.Price
	}
	if in.Quantity != nil {
		if !validate.Quantity(*in.Quantity) {
			return domain.ProductView{}, apperr.Invalid("quantity must not be negative")
		}
		patch.Quantity = in.Quantity
	}

	var catIDs []int64
	if in.CategoryIDs != nil {
		var err error
		if catIDs, err = s.ownedCategories(ctx, owner, *in.CategoryIDs); err != nil {
			return domain.ProductView{}, err
		}
	}

	if !patch.Empty() {
		if err := s.Prods.Update(ctx, owner, id, patch); err != nil {
			return domain.ProductView{}, notFound(err, "product not found")
		}
	}
	if in.CategoryIDs != nil {
		if err := s.Links.DeleteForProduct(ctx, id); err != nil {
			return domain.ProductView{}, err
		}
		if err := s.Links.Insert(ctx, id, catIDs); err != nil {
			return domain.ProductView{}, fmt.Errorf("link categories: %w", err)
		}
	}
	return s.Get(ctx, owner, id)
}

// Delete removes the product; its uploaded image objects are removed after
// the row, best-effort.
func (s *CatalogService) Delete(ctx context.Context, owner string, id int64) error {
	if _, err := s.Prods.Get(ctx, owner, id); err != nil {
		return notFound(err, "product not found")
	}
	imgs, err := s.Images.ForProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Prods.Delete(ctx, owner, id); err != nil {
		return notFound(err, "product not found")
	}
	for _, img := range imgs {
		removeObject(ctx, s.Objects, img.StoragePath)
	}
	return nil
}

// Views flattens products with their categories and images, loading both
// for the whole slice at once.
func (s *CatalogService) Views(ctx context.Context, prods []domain.Product) ([]domain.ProductView, error) {
	out := make([]domain.ProductView, len(prods))
	if len(prods) == 0 {
		return out, nil
	}
	ids := make([]int64, len(prods))
	idx := make(map[int64]int, len(prods))
	for i, p := range prods {
		ids[i] = p.ID
		idx[p.ID] = i
		out[i] = domain.ProductView{Product: p, CategoryIDs: []int64{}, CategoryNames: []string{}, Images: []domain.ImageView{}}
	}

	links, err := s.Links.ForProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		v := &out[idx[l.ProductID]]
		v.CategoryIDs = append(v.CategoryIDs, l.CategoryID)
		v.CategoryNames = append(v.CategoryNames, l.CategoryName)
	}

	imgs, err := s.Images.ForProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, img := range imgs {
		v := &out[idx[img.ProductID]]
		v.Images = append(v.Images, domain.ImageView{ID: img.ID, URL: img.ImageURL, DisplayOrder: img.DisplayOrder})
	}
	for i := range out {
		sort.SliceStable(out[i].Images, func(a, b int) bool {
			return out[i].Images[a].DisplayOrder < out[i].Images[b].DisplayOrder
		})
	}
	return out, nil
}

// ownedCategories dedupes ids (keeping first occurrence) and fails with
// Validation unless every id is a category of owner.
func (s *CatalogService) ownedCategories(ctx context.Context, owner string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[int64]bool, len(ids))
	uniq := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, apperr.Invalid("invalid category id %d", id)
		}
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	owned, err := s.Cats.OwnedIDs(ctx, owner, uniq)
	if err != nil {
		return nil, err
	}
	have := make(map[int64]bool, len(owned))
	for _, id := range owned {
		have[id] = true
	}
	for _, id := range uniq {
		if !have[id] {
			return nil, apperr.Invalid("category %d not found", id)
		}
	}
	return uniq, nil
}

// notFound replaces a store NotFound with a resource-specific message.
func notFound(err error, msg string) error {
	if apperr.Is(err, apperr.NotFound) {
		return apperr.Wrap(apperr.NotFound, err, msg)
	}
	return err
}

func removeObject(ctx context.Context, objects ObjectStore, path string) {
	if path == "" || objects == nil {
		return
	}
	if err := objects.Delete(ctx, path); err != nil {
		applog.L().Warn("image.object.delete", zap.String("path", path), zap.Error(err))
	}
}
