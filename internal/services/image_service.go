package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/domain"
	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/validate"
)

const (
	MaxImagesPerProduct = 10
	MaxImageBytes       = 5 << 20
)

type ImageService struct {
	Prods   ProductStore
	Images  ImageStore
	Objects ObjectStore
	Catalog *CatalogService
	Metrics Recorder
}

func NewImageService(prods ProductStore, images ImageStore, objects ObjectStore, catalog *CatalogService, rec Recorder) *ImageService {
	return &ImageService{Prods: prods, Images: images, Objects: objects, Catalog: catalog, Metrics: recorderOr(rec)}
}

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageOrder is one (image, new position) pair of a reorder request.
type ImageOrder struct {
	ID           int64 `json:"id"`
	DisplayOrder int   `json:"display_order"`
}

// checkRoom verifies ownership and the per-product image cap.
func (s *ImageService) checkRoom(ctx context.Context, owner string, productID int64) error {
	if _, err := s.Prods.Get(ctx, owner, productID); err != nil {
		return notFound(err, "product not found")
	}
	n, err := s.Images.Count(ctx, productID)
	if err != nil {
		return err
	}
	if n >= MaxImagesPerProduct {
		return apperr.Invalid("product already has %d images", MaxImagesPerProduct)
	}
	return nil
}

func (s *ImageService) AddUpload(ctx context.Context, owner string, productID int64, up Upload) (domain.ProductView, error) {
	if err := s.checkRoom(ctx, owner, productID); err != nil {
		return domain.ProductView{}, err
	}
	ext, ok := validate.ImageType(up.ContentType)
	if !ok {
		return domain.ProductView{}, apperr.Invalid("image must be jpeg, png or webp")
	}
	if len(up.Data) == 0 {
		return domain.ProductView{}, apperr.Invalid("image file is empty")
	}
	if len(up.Data) > MaxImageBytes {
		return domain.ProductView{}, apperr.Invalid("image exceeds 5MB")
	}

	path := owner + "/" + uuid.NewString() + ext
	url, err := s.Objects.Put(ctx, path, up.ContentType, up.Data)
	if err != nil {
		return domain.ProductView{}, apperr.Wrap(apperr.Internal, err, "store image")
	}
	if _, err := s.Images.Append(ctx, domain.ProductImage{ProductID: productID, ImageURL: url, StoragePath: path}); err != nil {
		removeObject(ctx, s.Objects, path)
		return domain.ProductView{}, err
	}
	s.Metrics.ImageOp("upload")
	return s.Catalog.Get(ctx, owner, productID)
}

func (s *ImageService) AddURL(ctx context.Context, owner string, productID int64, rawURL string) (domain.ProductView, error) {
	url, ok := validate.ImageURL(rawURL)
	if !ok {
		return domain.ProductView{}, apperr.Invalid("image_url must be an http(s) URL")
	}
	if err := s.checkRoom(ctx, owner, productID); err != nil {
		return domain.ProductView{}, err
	}
	if _, err := s.Images.Append(ctx, domain.ProductImage{ProductID: productID, ImageURL: url}); err != nil {
		return domain.ProductView{}, err
	}
	s.Metrics.ImageOp("add_url")
	return s.Catalog.Get(ctx, owner, productID)
}

// Delete removes one image and closes the gap it leaves in the ordering.
func (s *ImageService) Delete(ctx context.Context, owner string, productID, imageID int64) (domain.ProductView, error) {
	if _, err := s.Prods.Get(ctx, owner, productID); err != nil {
		return domain.ProductView{}, notFound(err, "product not found")
	}
	img, err := s.Images.Get(ctx, productID, imageID)
	if err != nil {
		return domain.ProductView{}, notFound(err, "image not found")
	}
	// A dangling object is harmless, so storage failures do not stop the delete.
	removeObject(ctx, s.Objects, img.StoragePath)

	if err := s.Images.Delete(ctx, productID, imageID); err != nil {
		return domain.ProductView{}, notFound(err, "image not found")
	}
	if err := s.Images.CloseGap(ctx, productID, img.DisplayOrder); err != nil {
		return domain.ProductView{}, err
	}
	s.Metrics.ImageOp("delete")
	return s.Catalog.Get(ctx, owner, productID)
}

// Reorder applies a full permutation. orders must name every image of the
// product once and use each position 0..n-1 exactly once.
func (s *ImageService) Reorder(ctx context.Context, owner string, productID int64, orders []ImageOrder) (domain.ProductView, error) {
	if _, err := s.Prods.Get(ctx, owner, productID); err != nil {
		return domain.ProductView{}, notFound(err, "product not found")
	}
	imgs, err := s.Images.ForProduct(ctx, productID)
	if err != nil {
		return domain.ProductView{}, err
	}
	if len(orders) != len(imgs) {
		return domain.ProductView{}, apperr.Invalid("orders must list all %d images of the product", len(imgs))
	}
	belongs := make(map[int64]bool, len(imgs))
	for _, img := range imgs {
		belongs[img.ID] = true
	}
	seenID := make(map[int64]bool, len(orders))
	seenPos := make([]bool, len(orders))
	for _, o := range orders {
		if !belongs[o.ID] {
			return domain.ProductView{}, apperr.Invalid("image %d does not belong to product %d", o.ID, productID)
		}
		if seenID[o.ID] {
			return domain.ProductView{}, apperr.Invalid("image %d listed twice", o.ID)
		}
		if o.DisplayOrder < 0 || o.DisplayOrder >= len(orders) || seenPos[o.DisplayOrder] {
			return domain.ProductView{}, apperr.Invalid("display_order values must be 0..%d without repeats", len(orders)-1)
		}
		seenID[o.ID] = true
		seenPos[o.DisplayOrder] = true
	}

	for _, o := range orders {
		if err := s.Images.SetOrder(ctx, productID, o.ID, o.DisplayOrder); err != nil {
			applog.L().Error("image.reorder.apply", zap.Int64("product_id", productID), zap.Int64("image_id", o.ID), zap.Error(err))
			return domain.ProductView{}, err
		}
	}
	s.Metrics.ImageOp("reorder")
	return s.Catalog.Get(ctx, owner, productID)
}
