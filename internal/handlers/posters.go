package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/storage"
)

type PostersHandler struct {
	Posters storage.PosterStore
}

func NewPostersHandler(posters storage.PosterStore) *PostersHandler {
	return &PostersHandler{Posters: posters}
}

// Serve streams a stored poster. Posters are immutable once written, so they
// may be cached for long.
func (h *PostersHandler) Serve(c *fiber.Ctx) error {
	reader, info, err := h.Posters.Open(c.UserContext(), c.Params("name"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return apperror.NotFound("poster not found")
		}
		return apperror.Internal("failed reading poster", err)
	}

	c.Set(fiber.HeaderContentType, info.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400, immutable")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	return c.SendStream(reader, int(info.Size))
}
