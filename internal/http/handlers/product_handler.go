package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

type productBody struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Quantity    *int64   `json:"quantity"`
	CategoryIDs *[]int64 `json:"categoryIds"`
}

// GET /products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	p, err := h.Catalog.List(c.UserContext(), owner(c), page, limit)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}

// GET /products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	v, err := h.Catalog.Get(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(v)
}

// POST /products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var body productBody
	if err := bind(c, &body); err != nil {
		return err
	}
	in := services.ProductInput{Quantity: body.Quantity}
	if body.Name != nil {
		in.Name = *body.Name
	}
	if body.Price != nil {
		in.Price = *body.Price
	}
	if body.CategoryIDs != nil {
		in.CategoryIDs = *body.CategoryIDs
	}
	v, err := h.Catalog.Create(c.UserContext(), owner(c), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": v.ID})
	return c.Status(fiber.StatusCreated).JSON(v)
}

// PUT /products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var body productBody
	if err := bind(c, &body); err != nil {
		return err
	}
	v, err := h.Catalog.Update(c.UserContext(), owner(c), id, services.ProductUpdate{
		Name:        body.Name,
		Price:       body.Price,
		Quantity:    body.Quantity,
		CategoryIDs: body.CategoryIDs,
	})
	if err != nil {
		return err
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": id})
	return c.JSON(v)
}

// DELETE /products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Catalog.Delete(c.UserContext(), owner(c), id); err != nil {
		return err
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
