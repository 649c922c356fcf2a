package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/domain"
)

// writeError traduce los errores de dominio a status HTTP y dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrScopeDenied):
		status, code = fiber.StatusForbidden, "SCOPE_DENIED"
	case errors.Is(err, domain.ErrReadOnly):
		status, code = fiber.StatusForbidden, "READ_ONLY"
	case errors.Is(err, domain.ErrPlantSwitchFixed):
		status, code = fiber.StatusForbidden, "PLANT_FIXED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNoPlantSelected):
		status, code = fiber.StatusBadRequest, "NO_PLANT_SELECTED"
	case errors.Is(err, domain.ErrStreamNotInView):
		status, code = fiber.StatusBadRequest, "STREAM_NOT_IN_VIEW"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionClosed):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrSaveInProgress):
		status, code = fiber.StatusConflict, "SAVE_IN_PROGRESS"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrNoData):
		status, code = fiber.StatusUnprocessableEntity, "NO_DATA"
	case errors.Is(err, domain.ErrUnavailable):
		status, code = fiber.StatusServiceUnavailable, "UNAVAILABLE"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
