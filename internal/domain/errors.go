package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrValidation         = errors.New("validación de movimiento fallida")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrWarningsNotAllowed = errors.New("el lote tiene advertencias y no se permite continuar")
	ErrAlreadyReversed    = errors.New("la transacción ya fue revertida")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrInvalidYield       = errors.New("invalid yield: original yield cannot be zero")
	ErrIncompatibleUnits  = errors.New("unidades incompatibles")
)
