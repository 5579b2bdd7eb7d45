package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
)

// ErrorHandler maps domain sentinel errors to HTTP status codes so the
// services never have to know about transport concerns.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		switch {
		case errors.Is(err, domain.ErrNotFound):
			code = fiber.StatusNotFound
		case errors.Is(err, domain.ErrConflict):
			code = fiber.StatusConflict
		case errors.Is(err, domain.ErrInvalidState):
			code = fiber.StatusBadRequest
		case errors.Is(err, domain.ErrSecurityViolation):
			code = fiber.StatusForbidden
		case errors.Is(err, domain.ErrIntegration):
			code = fiber.StatusBadGateway
		default:
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
		}

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
