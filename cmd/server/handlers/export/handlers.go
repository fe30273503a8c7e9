package export

import (
	"context"
	"errors"
	"time"

	"lumina/cmd/server/handlers/httperr"
	"lumina/internal/backup"
	"lumina/internal/logger"
	"lumina/internal/services/notes"

	"github.com/gofiber/fiber/v2"
)

// Lister returns the collection in stored order.
type Lister interface {
	List() []notes.Note
}

// Uploader stores an export remotely.
type Uploader interface {
	Enabled() bool
	Upload(ctx context.Context, list []notes.Note) (string, error)
}

// UploadResponse names the uploaded object.
type UploadResponse struct {
	Key   string `json:"key" example:"lumina/lumina-backup-2024-06-01.json"`
	Count int    `json:"count" example:"12"`
}

// Handlers contains the export HTTP handlers
type Handlers struct {
	notes    Lister
	uploader Uploader
	now      func() time.Time
}

// NewHandlers creates export handlers. uploader may be nil.
func NewHandlers(notes Lister, uploader Uploader) *Handlers {
	return &Handlers{notes: notes, uploader: uploader, now: time.Now}
}

// Download returns the whole collection as an attachment
// @Summary Export all notes
// @Tags export
// @Produce json
// @Security Bearer
// @Param format query string false "json|yaml (default json)"
// @Success 200 {array} notes.Note
// @Failure 400 {object} httperr.E
// @Router /export [get]
func (h *Handlers) Download(c *fiber.Ctx) error {
	format, err := backup.ParseFormat(c.Query("format"))
	if err != nil {
		return httperr.Status(fiber.StatusBadRequest, err.Error())
	}

	raw, err := backup.Encode(h.notes.List(), format)
	if err != nil {
		logger.L().Error("export encode failed", "handler", "Download", "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	c.Attachment(backup.Filename(h.now(), format))
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(raw)
}

// Upload puts a JSON export into the configured bucket
// @Summary Upload an export to S3
// @Tags export
// @Produce json
// @Security Bearer
// @Success 200 {object} UploadResponse
// @Failure 502 {object} httperr.E
// @Failure 503 {object} httperr.E
// @Router /export/s3 [post]
func (h *Handlers) Upload(c *fiber.Ctx) error {
	if h.uploader == nil || !h.uploader.Enabled() {
		return httperr.Status(fiber.StatusServiceUnavailable, backup.ErrS3Disabled.Error())
	}

	list := h.notes.List()
	key, err := h.uploader.Upload(c.UserContext(), list)
	if errors.Is(err, backup.ErrS3Disabled) {
		return httperr.Status(fiber.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		logger.L().Error("export upload failed", "handler", "Upload", "error", err)
		return httperr.Status(fiber.StatusBadGateway, "Upload failed")
	}

	logger.L().Info("export uploaded", "key", key, "count", len(list))
	return c.JSON(UploadResponse{Key: key, Count: len(list)})
}
