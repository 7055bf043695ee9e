package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cashbox-api/internal/application/dto"
	"github.com/jhoicas/cashbox-api/internal/domain"
)

// writeError traduce errores de dominio y del ledger a status y código.
// Los errores recuperables llevan su mensaje al operador; los de escritura no.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	msg := err.Error()

	var changed *domain.AvailabilityChangedError
	switch {
	case errors.As(err, &changed):
		status, code = fiber.StatusConflict, "AVAILABILITY_CHANGED"
	case errors.Is(err, domain.ErrInvalidAmount):
		status, code = fiber.StatusBadRequest, "INVALID_AMOUNT"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInfeasiblePayout):
		status, code = fiber.StatusUnprocessableEntity, "INFEASIBLE_PAYOUT"
	case errors.Is(err, domain.ErrConcurrentAvailabilityChanged):
		status, code = fiber.StatusConflict, "AVAILABILITY_CHANGED"
	case errors.Is(err, domain.ErrAlreadyReversed):
		status, code = fiber.StatusConflict, "ALREADY_REVERSED"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidPassword):
		status, code = fiber.StatusUnauthorized, "INVALID_PASSWORD"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrStorageUnavailable):
		status, code = fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"
		msg = domain.ErrStorageUnavailable.Error()
	case errors.Is(err, domain.ErrLedgerWrite):
		code = "LEDGER_WRITE"
		msg = domain.ErrLedgerWrite.Error()
	default:
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
