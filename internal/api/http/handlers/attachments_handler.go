package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/whistle-service/internal/storage"
)

// AttachmentsHandler streams stored blobs back by handle. There is no path
// based access; the store validates the handle shape before touching disk.
type AttachmentsHandler struct {
	store *storage.FileStore
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(store *storage.FileStore) *AttachmentsHandler {
	return &AttachmentsHandler{store: store}
}

// Retrieve handles GET /attachments/:handle.
func (h *AttachmentsHandler) Retrieve(c *fiber.Ctx) error {
	handle := c.Params("handle")
	blob, err := h.store.Open(handle)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+handle+`"`)
	return c.SendStream(blob)
}
