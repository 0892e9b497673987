package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/services"
	"github.com/leji-a/Inventory-Tracker/internal/validate"
)

type pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type pageBody[T any] struct {
	Data       []T        `json:"data"`
	Pagination pagination `json:"pagination"`
}

func sendPage[T any](c *fiber.Ctx, p services.Page[T]) error {
	pages := (p.Total + p.Limit - 1) / p.Limit
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(pageBody[T]{
		Data: items,
		Pagination: pagination{
			Page:        p.Page,
			Limit:       p.Limit,
			Total:       p.Total,
			TotalPages:  pages,
			HasNextPage: p.Page < pages,
			HasPrevPage: p.Page > 1,
		},
	})
}

func pageParams(c *fiber.Ctx) (int, int, error) {
	page, limit, ok := validate.Page(c.Query("page"), c.Query("limit"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "pagination"})
		return 0, 0, apperr.Invalid("page must be >= 1 and limit between 1 and 100")
	}
	return page, limit, nil
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, ok := validate.ID(c.Params(name))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": name})
		return 0, apperr.Invalid("invalid %s", name)
	}
	return id, nil
}

// bind parses a JSON body; the decoder's message stays server-side.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body", "error": err.Error()})
		return apperr.Invalid("request body must be valid JSON")
	}
	return nil
}

func sendCSV(c *fiber.Ctx, kind string, data []byte) error {
	name := fmt.Sprintf("%s-%s.csv", kind, time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(data)
}

type dataBody[T any] struct {
	Data []T `json:"data"`
}

func sendList[T any](c *fiber.Ctx, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(dataBody[T]{Data: items})
}
