// Package kit holds the response and error helpers shared by the handler
// packages.
package kit

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"freelanceflow/internal/repo"
	"freelanceflow/internal/storage"
)

// APIError is a structured application error carrying the HTTP status to
// emit. The wire shape is a JSON object with an "error" message field.
type APIError struct {
	HTTPStatus int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string { return e.Message }

func NewAPIError(httpStatus int, msg string) *APIError {
	return &APIError{HTTPStatus: httpStatus, Message: msg}
}

// Common helpers
func BadRequest(msg string) error { return NewAPIError(http.StatusBadRequest, msg) }
func NotFound(msg string) error   { return NewAPIError(http.StatusNotFound, msg) }
func InternalError(msg string) error {
	return NewAPIError(http.StatusInternalServerError, msg)
}

// FromStorage maps the storage error taxonomy onto HTTP statuses: NotFound
// -> 404, ValidationRejected and an unconfirmed delete -> 400, everything
// else (unreachable store, rejected write) -> 500.
func FromStorage(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, storage.ErrValidation), errors.Is(err, repo.ErrNotConfirmed):
		return BadRequest(err.Error())
	default:
		return InternalError(err.Error())
	}
}

// ErrorHandler returns a Fiber error handler that emits the unified error
// object.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ae *APIError
		if errors.As(err, &ae) {
			return c.Status(ae.HTTPStatus).JSON(fiber.Map{
				"error":      ae.Message,
				"request_id": RequestID(c),
			})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error":      fe.Message,
				"request_id": RequestID(c),
			})
		}

		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Internal Server Error",
			"request_id": RequestID(c),
		})
	}
}
