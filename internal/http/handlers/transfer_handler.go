package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/services"
)

type TransferHandler struct {
	Transfer *services.TransferService
}

type importBody struct {
	CSV string `json:"csv"`
}

// GET /products/export
func (h *TransferHandler) ExportProducts(c *fiber.Ctx) error {
	data, err := h.Transfer.ExportProducts(c.UserContext(), owner(c))
	if err != nil {
		return err
	}
	applog.Info(c, "csv.export.products", map[string]any{"bytes": len(data)})
	return sendCSV(c, "products", data)
}

// GET /inventory/export/current
func (h *TransferHandler) ExportCurrent(c *fiber.Ctx) error {
	data, err := h.Transfer.ExportCurrentInventory(c.UserContext(), owner(c))
	if err != nil {
		return err
	}
	applog.Info(c, "csv.export.inventory", map[string]any{"bytes": len(data)})
	return sendCSV(c, "inventory", data)
}

// GET /inventory/export/products
func (h *TransferHandler) ExportCountSheet(c *fiber.Ctx) error {
	data, err := h.Transfer.ExportCountSheet(c.UserContext(), owner(c))
	if err != nil {
		return err
	}
	applog.Info(c, "csv.export.count_sheet", map[string]any{"bytes": len(data)})
	return sendCSV(c, "count-sheet", data)
}

// POST /products/import and /inventory/import/products
func (h *TransferHandler) ImportProducts(c *fiber.Ctx) error {
	var body importBody
	if err := bind(c, &body); err != nil {
		return err
	}
	sum, err := h.Transfer.ImportProducts(c.UserContext(), owner(c), body.CSV)
	if err != nil {
		return err
	}
	applog.Audit(c, "csv.import.products", map[string]any{
		"created": sum.Created, "failed": sum.Failed, "skipped": sum.Skipped,
	})
	return c.JSON(sum)
}

// POST /inventory/import/inventory
func (h *TransferHandler) ImportInventory(c *fiber.Ctx) error {
	var body importBody
	if err := bind(c, &body); err != nil {
		return err
	}
	sum, err := h.Transfer.ImportInventory(c.UserContext(), owner(c), body.CSV)
	if err != nil {
		return err
	}
	applog.Audit(c, "csv.import.inventory", map[string]any{
		"created": sum.Created, "failed": sum.Failed, "skipped": sum.Skipped, "not_found": sum.NotFound,
	})
	return c.JSON(sum)
}
