package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/leji-a/Inventory-Tracker/internal/domain"
)

// LinkRepo manages product_categories rows.
type LinkRepo struct{ db *sqlx.DB }

func NewLinkRepo(db *sqlx.DB) *LinkRepo { return &LinkRepo{db: db} }

// ForProducts returns links with category names in insertion order.
func (r *LinkRepo) ForProducts(ctx context.Context, productIDs []int64) ([]domain.ProductCategoryRow, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`
		SELECT pc.product_id, pc.category_id, c.name AS category_name
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id IN (?)
		ORDER BY pc.id
	`, productIDs)
	if err != nil {
		return nil, err
	}
	var out []domain.ProductCategoryRow
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, Translate(err)
}

// Insert adds one link per category id in a single statement.
func (r *LinkRepo) Insert(ctx context.Context, productID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	values := make([]string, len(categoryIDs))
	args := make([]any, 0, 2*len(categoryIDs))
	for i, cid := range categoryIDs {
		values[i] = "(?, ?)"
		args = append(args, productID, cid)
	}
	q := `INSERT INTO product_categories(product_id, category_id) VALUES ` + strings.Join(values, ", ")
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...)
	return Translate(err)
}

// Link adds a single link and ignores one that already exists.
func (r *LinkRepo) Link(ctx context.Context, productID, categoryID int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO product_categories(product_id, category_id)
		VALUES (?, ?)
		ON CONFLICT (product_id, category_id) DO NOTHING
	`), productID, categoryID)
	return Translate(err)
}

func (r *LinkRepo) DeleteForProduct(ctx context.Context, productID int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM product_categories WHERE product_id = ?`), productID)
	return Translate(err)
}
