package services_test

import (
	"context"
	"testing"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/domain"
	"github.com/leji-a/Inventory-Tracker/internal/services"
)

func TestCategoryDuplicateNameConflicts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	if _, err := e.category.Create(ctx, "u1", "Tools", nil); err != nil {
		t.Fatal(err)
	}
	_, err := e.category.Create(ctx, "u1", "Tools", nil)
	if !apperr.Is(err, apperr.Conflict) || apperr.Message(err) != "category name already exists" {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestCategoryUpdateClearsDescription(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c, err := e.category.Create(ctx, "u1", "Tools", ptr("hand tools"))
	if err != nil {
		t.Fatal(err)
	}
	c, err = e.category.Update(ctx, "u1", c.ID, nil, ptr(""))
	if err != nil {
		t.Fatal(err)
	}
	if c.Description != nil {
		t.Fatalf("description should be cleared, got %q", *c.Description)
	}
	if _, err := e.category.Update(ctx, "u1", c.ID, ptr("  "), nil); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("blank name: want validation, got %v", err)
	}
}

func TestCategoryDeleteUnlinksProducts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c, _ := e.category.Create(ctx, "u1", "Tools", nil)
	v, err := e.catalog.Create(ctx, "u1", services.ProductInput{Name: "Saw", Price: 3, CategoryIDs: []int64{c.ID}})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.category.Delete(ctx, "u1", c.ID); err != nil {
		t.Fatal(err)
	}
	v, err = e.catalog.Get(ctx, "u1", v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.CategoryIDs) != 0 {
		t.Fatalf("link should cascade, got %v", v.CategoryIDs)
	}
	if err := e.category.Delete(ctx, "u1", c.ID); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("second delete: want not found, got %v", err)
	}
}

func TestResolverReusesAndCaches(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	existing, _ := e.category.Create(ctx, "u1", "Tools", nil)

	counting := &countingCats{CategoryStore: e.cats}
	r := services.NewCategoryResolver(counting)
	id, err := r.Resolve(ctx, "u1", "Tools")
	if err != nil || id != existing.ID {
		t.Fatalf("want existing id %d, got %d (%v)", existing.ID, id, err)
	}
	// cache lookups ignore case
	if id2, _ := r.Resolve(ctx, "u1", "TOOLS"); id2 != id {
		t.Fatalf("cached lookup returned %d", id2)
	}
	if counting.lookups != 1 {
		t.Fatalf("want one store lookup, got %d", counting.lookups)
	}

	fresh, err := r.Resolve(ctx, "u1", "Paint")
	if err != nil {
		t.Fatal(err)
	}
	if c, err := e.cats.Get(ctx, "u1", fresh); err != nil || c.Name != "Paint" {
		t.Fatalf("Paint should be created: %+v %v", c, err)
	}
	if _, err := r.Resolve(ctx, "u1", " "); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("blank name: want validation, got %v", err)
	}
}

func TestResolverLosesCreateRace(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	// The first lookup misses, then the insert collides with a row that
	// another writer created in between.
	winner, _ := e.category.Create(ctx, "u1", "Tools", nil)
	racy := &countingCats{CategoryStore: e.cats, missFirst: true}

	id, err := services.NewCategoryResolver(racy).Resolve(ctx, "u1", "Tools")
	if err != nil {
		t.Fatalf("race should resolve to the winner, got %v", err)
	}
	if id != winner.ID {
		t.Fatalf("want winner id %d, got %d", winner.ID, id)
	}
}

type countingCats struct {
	services.CategoryStore
	lookups   int
	missFirst bool
}

func (c *countingCats) GetByName(ctx context.Context, owner, name string) (domain.Category, error) {
	c.lookups++
	if c.missFirst && c.lookups == 1 {
		return domain.Category{}, apperr.New(apperr.NotFound, "not found")
	}
	return c.CategoryStore.GetByName(ctx, owner, name)
}
