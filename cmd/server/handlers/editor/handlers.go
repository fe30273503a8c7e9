package editor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"lumina/cmd/server/handlers/handlerutil"
	"lumina/cmd/server/handlers/httperr"
	"lumina/internal/logger"
	"lumina/internal/services/ai"
	"lumina/internal/services/editor"
	"lumina/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Sessions is the editor manager as seen by the HTTP layer.
type Sessions interface {
	Open(id string) (*editor.Session, error)
	Active() (*editor.Session, error)
	Close() error
}

// Selection clears the selected note when the editor closes.
type Selection interface {
	ClearSelection()
}

// Assistant runs AI tasks against the open buffer.
type Assistant interface {
	Run(ctx context.Context, task ai.Task, target ai.Target, img *ai.Image) (ai.Result, error)
	Processing() bool
}

// EditorResponse is the open session plus the AI indicator.
type EditorResponse struct {
	editor.Snapshot
	Processing bool `json:"processing" example:"false"`
}

// PatchRequest carries buffer changes. Absent fields are left alone; all
// present fields are applied together.
type PatchRequest struct {
	Title     *string  `json:"title" validate:"omitempty,max=500" example:"Groceries"`
	Content   *string  `json:"content" validate:"omitempty,max=100000" example:"milk, eggs"`
	Color     *string  `json:"color" validate:"omitempty,max=32" example:"#059669"`
	Tags      []string `json:"tags" validate:"max=50,dive,max=64,notetag" example:"home"`
	AddTags   string   `json:"addTags" validate:"max=500" example:"Work, Ideas"`
	RemoveTag string   `json:"removeTag" validate:"max=64" example:"ideas"`
	Append    string   `json:"append" validate:"max=100000" example:" more text"`
}

// OCRRequest carries an image as a data URL.
type OCRRequest struct {
	Image string `json:"image" validate:"required" example:"data:image/png;base64,iVBORw0KGgo="`
}

// AIResponse reports a task run and the resulting editor state.
type AIResponse struct {
	Result ai.Result      `json:"result"`
	Editor EditorResponse `json:"editor"`
}

// Handlers contains the editor HTTP handlers
type Handlers struct {
	sessions  Sessions
	selection Selection
	assistant Assistant
	validator *validator.Validate
}

// NewHandlers creates editor handlers. selection may be nil.
func NewHandlers(sessions Sessions, selection Selection, assistant Assistant, validator *validator.Validate) *Handlers {
	return &Handlers{
		sessions:  sessions,
		selection: selection,
		assistant: assistant,
		validator: validator,
	}
}

func (h *Handlers) respond(s *editor.Session) EditorResponse {
	return EditorResponse{Snapshot: s.Snapshot(), Processing: h.assistant.Processing()}
}

func (h *Handlers) active() (*editor.Session, error) {
	s, err := h.sessions.Active()
	if err != nil {
		return nil, httperr.Fail(httperr.ErrNoEditorSession)
	}
	return s, nil
}

// Open starts editing a note
// @Summary Open a note in the editor
// @Description Replaces the open session, if any. Unsaved changes of the replaced session are dropped.
// @Tags editor
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} EditorResponse
// @Failure 404 {object} httperr.E
// @Router /editor/{id} [post]
func (h *Handlers) Open(c *fiber.Ctx) error {
	id, err := handlerutil.NoteID(c, "Open", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	s, err := h.sessions.Open(id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Open", id, notes.ErrNoteNotFound)
	}
	return c.JSON(h.respond(s))
}

// Get returns the open session
// @Summary Current editor state
// @Tags editor
// @Produce json
// @Security Bearer
// @Success 200 {object} EditorResponse
// @Failure 409 {object} httperr.E
// @Router /editor [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	s, err := h.active()
	if err != nil {
		return err
	}
	return c.JSON(h.respond(s))
}

// Patch edits the buffer
// @Summary Edit the open buffer
// @Description Changes are autosaved once the buffer has been quiet for the debounce period.
// @Tags editor
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body PatchRequest true "Buffer changes"
// @Success 200 {object} EditorResponse
// @Failure 400 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /editor [patch]
func (h *Handlers) Patch(c *fiber.Ctx) error {
	var req PatchRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Patch"); err != nil {
		return err
	}

	s, err := h.active()
	if err != nil {
		return err
	}

	err = s.Apply(func(b *editor.Buffer) {
		if req.Title != nil {
			b.Title = *req.Title
		}
		if req.Content != nil {
			b.Content = *req.Content
		}
		if req.Color != nil {
			b.Color = *req.Color
		}
		if req.Tags != nil {
			b.Tags = notes.MergeTags(nil, req.Tags)
		}
		if req.AddTags != "" {
			b.Tags = notes.MergeTags(b.Tags, notes.ParseTagList(req.AddTags))
		}
		if req.RemoveTag != "" {
			b.Tags = notes.RemoveTag(b.Tags, req.RemoveTag)
		}
		b.Content += req.Append
	})
	if errors.Is(err, editor.ErrSessionClosed) {
		return httperr.Fail(httperr.ErrNoEditorSession)
	}
	if err != nil {
		return err
	}
	return c.JSON(h.respond(s))
}

// Close ends the session
// @Summary Close the editor
// @Tags editor
// @Security Bearer
// @Success 204
// @Failure 409 {object} httperr.E
// @Router /editor [delete]
func (h *Handlers) Close(c *fiber.Ctx) error {
	if err := h.sessions.Close(); err != nil {
		return httperr.Fail(httperr.ErrNoEditorSession)
	}
	if h.selection != nil {
		h.selection.ClearSelection()
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Assist runs a text task
// @Summary Run an AI task on the open buffer
// @Description Empty content is skipped. Remote failures leave the buffer unchanged and report applied=false.
// @Tags editor
// @Produce json
// @Security Bearer
// @Param task path string true "summarize|refine|continue|tags"
// @Success 200 {object} AIResponse
// @Failure 400 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /editor/ai/{task} [post]
func (h *Handlers) Assist(c *fiber.Ctx) error {
	task, err := ai.ParseTask(c.Params("task"))
	if err != nil || task == ai.TaskOCR {
		return httperr.Status(fiber.StatusBadRequest, "Unknown task")
	}
	return h.run(c, task, nil)
}

// OCR transcribes an image into the buffer
// @Summary Transcribe an image into the open buffer
// @Tags editor
// @Accept mpfd,json
// @Produce json
// @Security Bearer
// @Param image formData file false "Image file"
// @Param request body OCRRequest false "Image as a data URL"
// @Success 200 {object} AIResponse
// @Failure 400 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /editor/ai/ocr [post]
func (h *Handlers) OCR(c *fiber.Ctx) error {
	img, err := h.readImage(c)
	if err != nil {
		return err
	}
	return h.run(c, ai.TaskOCR, &img)
}

func (h *Handlers) readImage(c *fiber.Ctx) (ai.Image, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil {
			return ai.Image{}, httperr.Status(fiber.StatusBadRequest, ai.ErrImageRequired.Error())
		}
		f, err := fh.Open()
		if err != nil {
			return ai.Image{}, httperr.Fail(httperr.ErrBadRequest)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil || len(data) == 0 {
			return ai.Image{}, httperr.Status(fiber.StatusBadRequest, ai.ErrImageRequired.Error())
		}
		mime := fh.Header.Get(fiber.HeaderContentType)
		if mime == "" || mime == fiber.MIMEOctetStream {
			mime = http.DetectContentType(data)
		}
		return ai.Image{MIMEType: mime, Data: data}, nil
	}

	var req OCRRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "OCR"); err != nil {
		return ai.Image{}, err
	}
	img, err := ai.ParseDataURL(req.Image)
	if err != nil {
		return ai.Image{}, httperr.Status(fiber.StatusBadRequest, err.Error())
	}
	return img, nil
}

func (h *Handlers) run(c *fiber.Ctx, task ai.Task, img *ai.Image) error {
	s, err := h.active()
	if err != nil {
		return err
	}
	if h.assistant.Processing() {
		return httperr.Fail(httperr.ErrAIBusy)
	}

	res, err := h.assistant.Run(c.UserContext(), task, s, img)
	switch {
	case errors.Is(err, ai.ErrBusy):
		return httperr.Fail(httperr.ErrAIBusy)
	case errors.Is(err, ai.ErrImageAnalysis):
		return httperr.Status(fiber.StatusBadGateway, ai.ImageAnalysisAlert)
	case errors.Is(err, ai.ErrImageRequired), errors.Is(err, ai.ErrInvalidImage):
		return httperr.Status(fiber.StatusBadRequest, err.Error())
	case err != nil:
		logger.L().Error("ai task failed", "handler", "run", "task", task, "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(AIResponse{Result: res, Editor: h.respond(s)})
}
