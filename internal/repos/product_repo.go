package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/leji-a/Inventory-Tracker/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, owner_id, name, price, quantity, created_at, updated_at`

func (r *ProductRepo) Count(ctx context.Context, owner string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM products WHERE owner_id = ?`), owner)
	return n, Translate(err)
}

// List returns one page of the owner's products ordered by id.
func (r *ProductRepo) List(ctx context.Context, owner string, limit, offset int) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+productCols+`
		FROM products
		WHERE owner_id = ?
		ORDER BY id
		LIMIT ? OFFSET ?
	`), owner, limit, offset)
	return out, Translate(err)
}

func (r *ProductRepo) ListAll(ctx context.Context, owner string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+productCols+`
		FROM products
		WHERE owner_id = ?
		ORDER BY id
	`), owner)
	return out, Translate(err)
}

func (r *ProductRepo) Get(ctx context.Context, owner string, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
		SELECT `+productCols+`
		FROM products
		WHERE owner_id = ? AND id = ?
	`), owner, id)
	return p, Translate(err)
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (int64, error) {
	now := stamp()
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO products(owner_id, name, price, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`), p.OwnerID, p.Name, p.Price, p.Quantity, now, now)
	return id, Translate(err)
}

// Update writes the non-nil fields of patch and bumps updated_at.
func (r *ProductRepo) Update(ctx context.Context, owner string, id int64, patch domain.ProductPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{stamp()}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	args = append(args, owner, id)
	q := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE owner_id = ? AND id = ?`
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(q), args...))
}

// Delete removes the product; links, images and records go by cascade.
func (r *ProductRepo) Delete(ctx context.Context, owner string, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE owner_id = ? AND id = ?`), owner, id))
}
