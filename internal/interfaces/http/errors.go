package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorStatus asocia cada error de dominio con su código HTTP y de respuesta.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", "datos inválidos"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"
	case errors.Is(err, domain.ErrAlreadyReversed):
		return fiber.StatusConflict, "ALREADY_REVERSED", "la transacción ya fue revertida"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", "conflicto de escritura, reintente"
	case errors.Is(err, domain.ErrWarningsNotAllowed):
		return fiber.StatusUnprocessableEntity, "WARNINGS_NOT_ALLOWED", "el lote tiene advertencias"
	default:
		return fiber.StatusInternalServerError, "INTERNAL", "error interno"
	}
}

// writeError responde un error de dominio. Los motivos van en Details salvo en errores internos.
func writeError(c *fiber.Ctx, err error, details []string) error {
	status, code, msg := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		details = nil
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, Details: details})
}

// writeResult responde una operación del ledger: 201 si confirmó movimientos, 200 si fue un no-op.
func writeResult(c *fiber.Ctx, res *inventory.TransactionResult, err error) error {
	if err != nil {
		var details []string
		if res != nil {
			details = res.Errors
		}
		return writeError(c, err, details)
	}
	status := fiber.StatusCreated
	if res.TransactionID == "" {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.NewTransactionResultResponse(res))
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func invalidRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: "datos inválidos",
		Details: validationDetails(err),
	})
}
