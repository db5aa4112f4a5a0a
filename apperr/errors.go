package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Business failures the workflow layer can signal. Controllers translate them
// into HTTP statuses; anything unrecognized is treated as internal.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmailConfig       = errors.New("email configuration incomplete")
	ErrEmailSend         = errors.New("email send failed")
)

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// HTTPStatus maps a workflow error to the response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInsufficientStock):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes the standard {"success": false, "error": ...} payload.
func Respond(ctx *fiber.Ctx, err error) error {
	return ctx.Status(HTTPStatus(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
