package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/services"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /inventory/periods
func (h *InventoryHandler) ListPeriods(c *fiber.Ctx) error {
	ps, err := h.Inv.ListPeriods(c.UserContext(), owner(c))
	if err != nil {
		return err
	}
	return sendList(c, ps)
}

// GET /inventory/periods/active
func (h *InventoryHandler) ActivePeriod(c *fiber.Ctx) error {
	p, err := h.Inv.ActivePeriod(c.UserContext(), owner(c))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// POST /inventory/periods
func (h *InventoryHandler) CreatePeriod(c *fiber.Ctx) error {
	var body struct {
		Name      string  `json:"name"`
		StartDate string  `json:"start_date"`
		Notes     *string `json:"notes"`
	}
	if err := bind(c, &body); err != nil {
		return err
	}
	p, err := h.Inv.CreatePeriod(c.UserContext(), owner(c), services.PeriodInput{
		Name:      body.Name,
		StartDate: body.StartDate,
		Notes:     body.Notes,
	})
	if err != nil {
		return err
	}
	applog.Audit(c, "inventory.period.create", map[string]any{"period_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// POST /inventory/periods/:id/close
func (h *InventoryHandler) ClosePeriod(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Inv.ClosePeriod(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	applog.Audit(c, "inventory.period.close", map[string]any{"period_id": id})
	return c.JSON(p)
}

// POST /inventory/periods/:id/records
func (h *InventoryHandler) AddRecord(c *fiber.Ctx) error {
	periodID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		ProductID int64   `json:"product_id"`
		Quantity  *int64  `json:"quantity"`
		Notes     *string `json:"notes"`
	}
	if err := bind(c, &body); err != nil {
		return err
	}
	if body.ProductID <= 0 {
		return apperr.Invalid("product_id is required")
	}
	if body.Quantity == nil {
		return apperr.Invalid("quantity is required")
	}
	rec, err := h.Inv.AddRecord(c.UserContext(), owner(c), periodID, body.ProductID, *body.Quantity, body.Notes)
	if err != nil {
		return err
	}
	applog.Audit(c, "inventory.record.upsert", map[string]any{
		"period_id": periodID, "product_id": body.ProductID, "quantity": *body.Quantity,
	})
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// GET /inventory/periods/:id/records
func (h *InventoryHandler) PeriodRecords(c *fiber.Ctx) error {
	periodID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Inv.PeriodRecords(c.UserContext(), owner(c), periodID)
	if err != nil {
		return err
	}
	return sendList(c, rows)
}

// DELETE /inventory/periods/:id/records/:productId
func (h *InventoryHandler) DeleteRecord(c *fiber.Ctx) error {
	periodID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	productID, err := idParam(c, "productId")
	if err != nil {
		return err
	}
	if err := h.Inv.DeleteRecord(c.UserContext(), owner(c), periodID, productID); err != nil {
		return err
	}
	applog.Audit(c, "inventory.record.delete", map[string]any{"period_id": periodID, "product_id": productID})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /inventory/current
func (h *InventoryHandler) Current(c *fiber.Ctx) error {
	cur, err := h.Inv.CurrentInventory(c.UserContext(), owner(c))
	if err != nil {
		return err
	}
	return c.JSON(cur)
}

// GET /inventory/products/:id/history
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Inv.ProductHistory(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	return sendList(c, rows)
}
