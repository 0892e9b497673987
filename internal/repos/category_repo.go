package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/leji-a/Inventory-Tracker/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, owner_id, name, description, created_at, updated_at`

func (r *CategoryRepo) Count(ctx context.Context, owner string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM categories WHERE owner_id = ?`), owner)
	return n, Translate(err)
}

func (r *CategoryRepo) List(ctx context.Context, owner string, limit, offset int) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+categoryCols+`
		FROM categories
		WHERE owner_id = ?
		ORDER BY name, id
		LIMIT ? OFFSET ?
	`), owner, limit, offset)
	return out, Translate(err)
}

func (r *CategoryRepo) Get(ctx context.Context, owner string, id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`
		SELECT `+categoryCols+` FROM categories WHERE owner_id = ? AND id = ?
	`), owner, id)
	return c, Translate(err)
}

// GetByName is an exact, case-sensitive match within the owner's scope.
func (r *CategoryRepo) GetByName(ctx context.Context, owner, name string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`
		SELECT `+categoryCols+` FROM categories WHERE owner_id = ? AND name = ?
	`), owner, name)
	return c, Translate(err)
}

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) (int64, error) {
	now := stamp()
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO categories(owner_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), c.OwnerID, c.Name, c.Description, now, now)
	return id, Translate(err)
}

func (r *CategoryRepo) Update(ctx context.Context, owner string, id int64, patch domain.CategoryPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{stamp()}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		if *patch.Description == "" {
			args = append(args, nil)
		} else {
			args = append(args, *patch.Description)
		}
	}
	args = append(args, owner, id)
	q := `UPDATE categories SET ` + strings.Join(sets, ", ") + ` WHERE owner_id = ? AND id = ?`
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(q), args...))
}

func (r *CategoryRepo) Delete(ctx context.Context, owner string, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM categories WHERE owner_id = ? AND id = ?`), owner, id))
}

// OwnedIDs returns the subset of ids that exist and belong to owner.
func (r *CategoryRepo) OwnedIDs(ctx context.Context, owner string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT id FROM categories WHERE owner_id = ? AND id IN (?)`, owner, ids)
	if err != nil {
		return nil, err
	}
	var out []int64
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, Translate(err)
}
