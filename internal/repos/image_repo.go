package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/leji-a/Inventory-Tracker/internal/domain"
)

type ImageRepo struct{ db *sqlx.DB }

func NewImageRepo(db *sqlx.DB) *ImageRepo { return &ImageRepo{db: db} }

const imageCols = `id, product_id, image_url, COALESCE(storage_path, '') AS storage_path, display_order, created_at`

func (r *ImageRepo) ForProducts(ctx context.Context, productIDs []int64) ([]domain.ProductImage, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`
		SELECT `+imageCols+`
		FROM product_images
		WHERE product_id IN (?)
		ORDER BY product_id, display_order, id
	`, productIDs)
	if err != nil {
		return nil, err
	}
	var out []domain.ProductImage
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, Translate(err)
}

func (r *ImageRepo) ForProduct(ctx context.Context, productID int64) ([]domain.ProductImage, error) {
	return r.ForProducts(ctx, []int64{productID})
}

func (r *ImageRepo) Get(ctx context.Context, productID, imageID int64) (domain.ProductImage, error) {
	var img domain.ProductImage
	err := r.db.GetContext(ctx, &img, r.db.Rebind(`
		SELECT `+imageCols+` FROM product_images WHERE product_id = ? AND id = ?
	`), productID, imageID)
	return img, Translate(err)
}

func (r *ImageRepo) Count(ctx context.Context, productID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM product_images WHERE product_id = ?`), productID)
	return n, Translate(err)
}

// Append inserts img after the product's current last image (order 0 when
// it has none). The next order is computed in the same statement.
func (r *ImageRepo) Append(ctx context.Context, img domain.ProductImage) (domain.ProductImage, error) {
	var path any
	if img.StoragePath != "" {
		path = img.StoragePath
	}
	img.CreatedAt = stamp()
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO product_images(product_id, image_url, storage_path, display_order, created_at)
		SELECT CAST(? AS BIGINT), CAST(? AS TEXT), CAST(? AS TEXT), COALESCE(MAX(display_order) + 1, 0), CAST(? AS TEXT)
		FROM product_images
		WHERE product_id = ?
		RETURNING id, display_order
	`), img.ProductID, img.ImageURL, path, img.CreatedAt, img.ProductID).Scan(&img.ID, &img.DisplayOrder)
	return img, Translate(err)
}

func (r *ImageRepo) Delete(ctx context.Context, productID, imageID int64) error {
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM product_images WHERE product_id = ? AND id = ?`), productID, imageID))
}

// CloseGap moves every image ordered after `after` up by one.
func (r *ImageRepo) CloseGap(ctx context.Context, productID int64, after int) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE product_images
		SET display_order = display_order - 1
		WHERE product_id = ? AND display_order > ?
	`), productID, after)
	return Translate(err)
}

func (r *ImageRepo) SetOrder(ctx context.Context, productID, imageID int64, order int) error {
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE product_images SET display_order = ? WHERE product_id = ? AND id = ?
	`), order, productID, imageID))
}
