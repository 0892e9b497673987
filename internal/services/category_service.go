package services

import (
	"context"
	"strings"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/domain"
	"github.com/leji-a/Inventory-Tracker/internal/validate"
)

type CategoryService struct {
	Cats CategoryStore
}

func NewCategoryService(cats CategoryStore) *CategoryService { return &CategoryService{Cats: cats} }

func (s *CategoryService) List(ctx context.Context, owner string, page, limit int) (Page[domain.Category], error) {
	total, err := s.Cats.Count(ctx, owner)
	if err != nil {
		return Page[domain.Category]{}, err
	}
	items, err := s.Cats.List(ctx, owner, limit, offset(page, limit))
	if err != nil {
		return Page[domain.Category]{}, err
	}
	return Page[domain.Category]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *CategoryService) Get(ctx context.Context, owner string, id int64) (domain.Category, error) {
	c, err := s.Cats.Get(ctx, owner, id)
	return c, notFound(err, "category not found")
}

func (s *CategoryService) Create(ctx context.Context, owner, name string, description *string) (domain.Category, error) {
	name, ok := validate.Name(name)
	if !ok {
		return domain.Category{}, apperr.Invalid("name is required")
	}
	desc, err := cleanNotes(description)
	if err != nil {
		return domain.Category{}, err
	}
	id, err := s.Cats.Create(ctx, domain.Category{OwnerID: owner, Name: name, Description: desc})
	if err != nil {
		return domain.Category{}, categoryConflict(err)
	}
	return s.Get(ctx, owner, id)
}

func (s *CategoryService) Update(ctx context.Context, owner string, id int64, name, description *string) (domain.Category, error) {
	var patch domain.CategoryPatch
	if name != nil {
		n, ok := validate.Name(*name)
		if !ok {
			return domain.Category{}, apperr.Invalid("name must not be empty")
		}
		patch.Name = &n
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		if _, ok := validate.Notes(d); !ok {
			return domain.Category{}, apperr.Invalid("description is too long")
		}
		patch.Description = &d
	}
	if patch.Name == nil && patch.Description == nil {
		return s.Get(ctx, owner, id)
	}
	if err := s.Cats.Update(ctx, owner, id, patch); err != nil {
		return domain.Category{}, categoryConflict(notFound(err, "category not found"))
	}
	return s.Get(ctx, owner, id)
}

// Delete removes the category; product links go by cascade.
func (s *CategoryService) Delete(ctx context.Context, owner string, id int64) error {
	return notFound(s.Cats.Delete(ctx, owner, id), "category not found")
}

func categoryConflict(err error) error {
	if apperr.Is(err, apperr.Conflict) {
		return apperr.Wrap(apperr.Conflict, err, "category name already exists")
	}
	return err
}

// CategoryResolver finds or creates categories by name for one batch. Its
// cache is keyed case-insensitively and must not outlive the batch.
type CategoryResolver struct {
	cats  CategoryStore
	cache map[string]int64
}

func NewCategoryResolver(cats CategoryStore) *CategoryResolver {
	return &CategoryResolver{cats: cats, cache: map[string]int64{}}
}

func (r *CategoryResolver) Resolve(ctx context.Context, owner, name string) (int64, error) {
	name, ok := validate.Name(name)
	if !ok {
		return 0, apperr.Invalid("category name is empty")
	}
	key := owner + "\x00" + strings.ToLower(name)
	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	c, err := r.cats.GetByName(ctx, owner, name)
	switch {
	case err == nil:
		r.cache[key] = c.ID
		return c.ID, nil
	case !apperr.Is(err, apperr.NotFound):
		return 0, err
	}

	id, err := r.cats.Create(ctx, domain.Category{OwnerID: owner, Name: name})
	if apperr.Is(err, apperr.Conflict) {
		// Lost a race with a concurrent create; use the winner's row.
		c, err = r.cats.GetByName(ctx, owner, name)
		id = c.ID
	}
	if err != nil {
		return 0, err
	}
	r.cache[key] = id
	return id, nil
}
