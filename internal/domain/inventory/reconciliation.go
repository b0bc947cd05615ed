package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/precision"
)

// Tolerancias de la capa de cálculo.
var (
	ReconciliationTolerance = decimal.New(1, -3)
	ConsistencyTolerance    = decimal.New(1, -3)
)

const defaultReconciliationReason = "physical count reconciliation"

// PerformReconciliation ajusta el stock del sistema al conteo físico.
// Diferencias menores a 0.001 son un no-op exitoso sin movimiento.
func PerformReconciliation(systemStock, physicalCount decimal.Decimal, item *entity.InventoryItem, reason string) CalculationResult {
	difference := precision.Subtract(physicalCount, systemStock, precision.DefaultPlaces)
	if difference.Abs().LessThan(ReconciliationTolerance) {
		current := systemStock
		if item != nil {
			current = item.CurrentStock
		}
		return CalculationResult{Success: true, NewStock: current}
	}
	if reason == "" {
		reason = defaultReconciliationReason
	}
	return CalculateStockChange(item, difference, entity.MovementTypeAdjustment, nil, reason)
}

// ValidateCalculationConsistency confirma after ≈ before + change dentro de tolerance.
func ValidateCalculationConsistency(before, change, after, tolerance decimal.Decimal) bool {
	expected := precision.Add(before, change, precision.DefaultPlaces)
	return precision.Equals(expected, after, tolerance)
}
