package handlerutil

import (
	"errors"

	"lumina/cmd/server/handlers/httperr"
	"lumina/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func NotFoundError(err error) error {
	return httperr.Status(fiber.StatusNotFound, err.Error())
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ParseAndValidateQuery parses query parameters and validates them
func ParseAndValidateQuery(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.QueryParser(req); err != nil {
		logger.L().Warn("failed to parse query params", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("query validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// NoteID returns the :id route parameter.
func NoteID(c *fiber.Ctx, handlerName string, notFoundErr error) (string, error) {
	id := c.Params("id")
	if id == "" {
		logger.L().Warn("missing note ID parameter", "handler", handlerName, "path", c.Path())
		return "", NotFoundError(notFoundErr)
	}
	return id, nil
}

// HandleServiceError maps notFoundErr to 404 and anything else to 500.
func HandleServiceError(err error, handlerName string, noteID string, notFoundErr error) error {
	logFields := []any{"handler", handlerName, "error", err}
	if noteID != "" {
		logFields = append(logFields, "note_id", noteID)
	}

	if errors.Is(err, notFoundErr) {
		logger.L().Info("resource not found", logFields...)
		return NotFoundError(notFoundErr)
	}

	logger.L().Error("service operation failed", logFields...)
	return httperr.Fail(httperr.ErrInternal)
}
