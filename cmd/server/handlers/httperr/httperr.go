package httperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// E represents an HTTP error with status code and message
type E struct {
	Status  int    `json:"-" example:"400"`
	Message string `json:"error" example:"Bad Request"`
}

// Error implements the error interface
func (e E) Error() string {
	return e.Message
}

// JSON returns the error as JSON response
func (e E) JSON(c *fiber.Ctx) error {
	return c.Status(e.Status).JSON(e)
}

// Fail returns the error for Fiber's global error handler to process
func Fail(err E) error {
	return err
}

// Status is Fail for a one-off status and message.
func Status(code int, message string) error {
	return E{Status: code, Message: message}
}

// InvalidInput wraps a validation error and returns the standard response.
func InvalidInput(err error) error {
	return Fail(E{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid input: " + err.Error(),
	})
}

// InternalError returns an internal server error with the given message
func InternalError(message string) E {
	return E{Status: fiber.StatusInternalServerError, Message: message}
}

// Pre-defined HTTP errors
var (
	ErrBadRequest         = E{Status: fiber.StatusBadRequest, Message: "Bad Request"}
	ErrUnauthorized       = E{Status: fiber.StatusUnauthorized, Message: "Unauthorized"}
	ErrNotFound           = E{Status: fiber.StatusNotFound, Message: "Not Found"}
	ErrNoEditorSession    = E{Status: fiber.StatusConflict, Message: "No note is open for editing"}
	ErrAIBusy             = E{Status: fiber.StatusConflict, Message: "An AI request is already in progress"}
	ErrTooManyRequests    = E{Status: fiber.StatusTooManyRequests, Message: "Too Many Requests"}
	ErrServiceUnavailable = E{Status: fiber.StatusServiceUnavailable, Message: "Service Unavailable"}
	ErrInternal           = InternalError("Internal Server Error")
)

// Handler is the global error handler for Fiber
func Handler(c *fiber.Ctx, err error) error {
	var e E
	if errors.As(err, &e) {
		return e.JSON(c)
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return c.Status(fiberError.Code).JSON(E{
			Status:  fiberError.Code,
			Message: fiberError.Message,
		})
	}

	return ErrInternal.JSON(c)
}
