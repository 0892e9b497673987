package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/services"
)

type ImageHandler struct {
	Images *services.ImageService
}

// POST /products/:id/images (multipart field "image")
func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return apperr.Invalid(`multipart field "image" is required`)
	}
	f, err := fh.Open()
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "open upload")
	}
	defer f.Close()
	// One byte over the cap is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageBytes+1))
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "read upload")
	}

	v, err := h.Images.AddUpload(c.UserContext(), owner(c), id, services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return err
	}
	applog.Audit(c, "product.image.upload", map[string]any{"product_id": id, "bytes": len(data)})
	return c.Status(fiber.StatusCreated).JSON(v)
}

// POST /products/:id/images/url
func (h *ImageHandler) AddURL(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		ImageURL string `json:"image_url"`
	}
	if err := bind(c, &body); err != nil {
		return err
	}
	v, err := h.Images.AddURL(c.UserContext(), owner(c), id, body.ImageURL)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.image.add_url", map[string]any{"product_id": id})
	return c.Status(fiber.StatusCreated).JSON(v)
}

// PUT /products/:id/images/reorder
func (h *ImageHandler) Reorder(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Orders []services.ImageOrder `json:"orders"`
	}
	if err := bind(c, &body); err != nil {
		return err
	}
	v, err := h.Images.Reorder(c.UserContext(), owner(c), id, body.Orders)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.image.reorder", map[string]any{"product_id": id, "count": len(body.Orders)})
	return c.JSON(v)
}

// DELETE /products/:id/images/:imageId
func (h *ImageHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	imageID, err := idParam(c, "imageId")
	if err != nil {
		return err
	}
	v, err := h.Images.Delete(c.UserContext(), owner(c), id, imageID)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.image.delete", map[string]any{"product_id": id, "image_id": imageID})
	return c.JSON(v)
}
