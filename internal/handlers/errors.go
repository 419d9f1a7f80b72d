package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
)

// statusFor maps an application error to its HTTP status
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindComputation:
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// errorResponse writes err as JSON. Internal failures are not echoed to the client.
func errorResponse(c *fiber.Ctx, err error, fallback string) error {
	status := statusFor(err)
	msg := fallback
	if status != fiber.StatusInternalServerError {
		msg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"kind":  apperr.KindOf(err),
	})
}
