package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Actor identidad del operador: quién mueve y en qué tenant/sede.
type Actor struct {
	UserID     string
	TenantID   string
	LocationID string
}

// StockOperation un movimiento pedido por el llamador.
type StockOperation struct {
	InventoryItemID string
	QuantityChange  decimal.Decimal // con signo
	Type            entity.MovementType
	// Unit unidad de QuantityChange y UnitCost; vacío = unidad del ítem.
	Unit        string
	UnitCost    *decimal.Decimal
	Reason      string
	ReferenceID string
}

// ReversalReferencePrefix prefijo reservado del referenceId de los movimientos de reversión.
// Ningún llamador puede usarlo: así la guarda de doble reversión no se puede falsificar.
const ReversalReferencePrefix = "reversal:"

// ReversalReference referenceId de los movimientos que revierten transactionID.
func ReversalReference(transactionID string) string {
	return ReversalReferencePrefix + transactionID
}

// checkReferences rechaza operaciones del llamador que usen el prefijo reservado.
func checkReferences(ops []StockOperation) error {
	var errs []string
	for i, op := range ops {
		if strings.HasPrefix(op.ReferenceID, ReversalReferencePrefix) {
			errs = append(errs, fmt.Sprintf("operation %d: reference id prefix %q is reserved", i+1, ReversalReferencePrefix))
		}
	}
	if len(errs) > 0 {
		return abort(domain.ErrValidation, errs...)
	}
	return nil
}

// MovementOptions opciones de una transacción del ledger.
// El valor cero continúa ante advertencias y valida todo.
type MovementOptions struct {
	// SkipValidation aplica el cambio aunque falle la validación del ítem o la política de stock.
	// Una operación mal formada (tipo desconocido, cantidad cero, sin ítem) bloquea igual.
	SkipValidation bool
	// HaltOnWarnings aborta el lote completo si alguna operación produce advertencias.
	HaltOnWarnings bool
}

// TransactionResult resultado estructurado de una operación de la capa de transacciones.
// Success=false garantiza que no hubo escrituras.
type TransactionResult struct {
	Success       bool
	TransactionID string
	Movements     []*entity.StockMovement
	Warnings      []string
	Errors        []string
}

// abortError aborto de una transacción: motivos para el llamador y sentinel para mapear con errors.Is.
type abortError struct {
	sentinel error
	reasons  []string
}

func (e *abortError) Error() string {
	return fmt.Sprintf("%s: %s", e.sentinel.Error(), strings.Join(e.reasons, "; "))
}

func (e *abortError) Unwrap() error { return e.sentinel }

func abort(sentinel error, reasons ...string) error {
	return &abortError{sentinel: sentinel, reasons: reasons}
}

func invalidInput(reason string) error {
	return abort(domain.ErrInvalidInput, reason)
}

// reasonsOf extrae los motivos de un error para TransactionResult.Errors.
func reasonsOf(err error) []string {
	var ae *abortError
	if errors.As(err, &ae) {
		return ae.reasons
	}
	return []string{err.Error()}
}

// classify elige el sentinel de un lote rechazado por la capa de cálculo.
func classify(errs []string) error {
	for _, e := range errs {
		if strings.Contains(e, "insufficient stock") {
			return domain.ErrInsufficientStock
		}
	}
	return domain.ErrValidation
}
