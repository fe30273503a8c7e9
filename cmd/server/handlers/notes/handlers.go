package notes

import (
	"context"
	"time"

	"lumina/cmd/server/handlers/handlerutil"
	"lumina/cmd/server/handlers/httperr"
	"lumina/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Service defines the interface for notes service
type Service interface {
	Create(ctx context.Context) notes.Note
	Get(id string) (notes.Note, error)
	List() []notes.Note
	Update(ctx context.Context, n notes.Note) (notes.Note, error)
	Delete(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (notes.Note, error)
	TogglePin(ctx context.Context, id string) (notes.Note, error)
}

// EditorCloser drops the editor session of a note that goes away.
type EditorCloser interface {
	CloseIf(id string)
}

// ListNotesRequest holds the listing filters.
type ListNotesRequest struct {
	Q    string `query:"q" validate:"max=200" example:"milk"`
	Tag  string `query:"tag" validate:"max=64" example:"home"`
	View string `query:"view" validate:"omitempty,oneof=all favorites" example:"all"`
}

// ListNotesResponse is the filtered listing plus the sidebar data.
type ListNotesResponse struct {
	Pinned  []notes.Note `json:"pinned"`
	Regular []notes.Note `json:"regular"`
	Tags    []string     `json:"tags" example:"home,work"`
	Heading string       `json:"heading" example:"My Thoughts"`
}

// UpdateNoteRequest is the full replacement body for a note.
type UpdateNoteRequest struct {
	Title      string   `json:"title" validate:"max=500" example:"Groceries"`
	Content    string   `json:"content" validate:"max=100000" example:"milk, eggs"`
	Tags       []string `json:"tags" validate:"max=50,dive,max=64,notetag" example:"home"`
	Color      string   `json:"color" validate:"max=32" example:"#4F46E5"`
	IsFavorite bool     `json:"isFavorite" example:"false"`
	IsPinned   bool     `json:"isPinned" example:"false"`
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	service   Service
	editor    EditorCloser
	validator *validator.Validate
	now       func() time.Time
}

// NewHandlers creates new notes handlers. editor may be nil.
func NewHandlers(service Service, editor EditorCloser, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		editor:    editor,
		validator: validator,
		now:       time.Now,
	}
}

// Create handles note creation
// @Summary Create a blank note
// @Description The new note goes to the front of the collection and becomes the selection.
// @Tags notes
// @Produce json
// @Security Bearer
// @Success 201 {object} notes.Note
// @Failure 401 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	n := h.service.Create(c.UserContext())
	return c.Status(fiber.StatusCreated).JSON(n)
}

// List handles the filtered listing
// @Summary List notes, pinned first
// @Tags notes
// @Produce json
// @Security Bearer
// @Param q query string false "Case-insensitive search in title or content"
// @Param tag query string false "Exact tag filter"
// @Param view query string false "all|favorites"
// @Success 200 {object} ListNotesResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	var req ListNotesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "List"); err != nil {
		return err
	}

	view, err := notes.ParseViewMode(req.View)
	if err != nil {
		return httperr.Fail(httperr.ErrBadRequest)
	}

	f := notes.Filter{Search: req.Q, Tag: req.Tag, View: view}
	all := h.service.List()
	v := notes.Query(all, f)

	return c.JSON(ListNotesResponse{
		Pinned:  v.Pinned,
		Regular: v.Regular,
		Tags:    notes.Tags(all),
		Heading: notes.Heading(f),
	})
}

// Get returns one note
// @Summary Get a note
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := handlerutil.NoteID(c, "Get", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	n, err := h.service.Get(id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Get", id, notes.ErrNoteNotFound)
	}
	return c.JSON(n)
}

// Update replaces a note
// @Summary Replace a note
// @Description Tags are normalized; updatedAt is set to the time of the request.
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body UpdateNoteRequest true "Replacement note"
// @Success 200 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [put]
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := handlerutil.NoteID(c, "Update", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	n, err := h.service.Update(c.UserContext(), notes.Note{
		ID:         id,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       notes.MergeTags(nil, req.Tags),
		UpdatedAt:  h.now().UnixMilli(),
		Color:      req.Color,
		IsFavorite: req.IsFavorite,
		IsPinned:   req.IsPinned,
	})
	if err != nil {
		return handlerutil.HandleServiceError(err, "Update", id, notes.ErrNoteNotFound)
	}
	return c.JSON(n)
}

// Delete removes a note
// @Summary Delete a note
// @Tags notes
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 204
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.NoteID(c, "Delete", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return handlerutil.HandleServiceError(err, "Delete", id, notes.ErrNoteNotFound)
	}
	if h.editor != nil {
		h.editor.CloseIf(id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Favorite flips the favorite flag
// @Summary Toggle favorite
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/favorite [post]
func (h *Handlers) Favorite(c *fiber.Ctx) error {
	return h.toggle(c, "Favorite", h.service.ToggleFavorite)
}

// Pin flips the pinned flag
// @Summary Toggle pin
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/pin [post]
func (h *Handlers) Pin(c *fiber.Ctx) error {
	return h.toggle(c, "Pin", h.service.TogglePin)
}

func (h *Handlers) toggle(c *fiber.Ctx, name string, flip func(context.Context, string) (notes.Note, error)) error {
	id, err := handlerutil.NoteID(c, name, notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	n, err := flip(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleServiceError(err, name, id, notes.ErrNoteNotFound)
	}
	return c.JSON(n)
}

// Palette lists the accent colors
// @Summary Accent palette
// @Tags notes
// @Produce json
// @Security Bearer
// @Success 200 {array} notes.Swatch
// @Failure 401 {object} httperr.E
// @Router /palette [get]
func Palette(c *fiber.Ctx) error {
	return c.JSON(notes.Palette)
}

