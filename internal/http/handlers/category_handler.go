package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/services"
)

type CategoryHandler struct {
	Categories *services.CategoryService
}

type categoryBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	p, err := h.Categories.List(c.UserContext(), owner(c), page, limit)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.Categories.Get(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var body categoryBody
	if err := bind(c, &body); err != nil {
		return err
	}
	name := ""
	if body.Name != nil {
		name = *body.Name
	}
	cat, err := h.Categories.Create(c.UserContext(), owner(c), name, body.Description)
	if err != nil {
		return err
	}
	applog.Audit(c, "category.create", map[string]any{"category_id": cat.ID})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var body categoryBody
	if err := bind(c, &body); err != nil {
		return err
	}
	cat, err := h.Categories.Update(c.UserContext(), owner(c), id, body.Name, body.Description)
	if err != nil {
		return err
	}
	applog.Audit(c, "category.update", map[string]any{"category_id": id})
	return c.JSON(cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Categories.Delete(c.UserContext(), owner(c), id); err != nil {
		return err
	}
	applog.Audit(c, "category.delete", map[string]any{"category_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
