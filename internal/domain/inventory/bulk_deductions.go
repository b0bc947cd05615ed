package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/precision"
)

// IngredientDeduction línea de receta a descontar. La produce el llamador (datos de menú).
type IngredientDeduction struct {
	InventoryItemID string
	Quantity        decimal.Decimal // positiva, en Unit
	Unit            string          // vacío = unidad del ítem
	CostOverride    *decimal.Decimal
}

// DeductionLine resultado de una línea del descuento masivo.
type DeductionLine struct {
	InventoryItemID string
	// Quantity cantidad ya convertida a la unidad del ítem.
	Quantity decimal.Decimal
	Result   *CalculationResult
	Error    string
}

// Failed indica si la línea no se puede aplicar.
func (l DeductionLine) Failed() bool {
	return l.Error != "" || l.Result == nil || !l.Result.Success
}

// BulkDeductionReport reporte del descuento masivo. CanProceed es la precondición
// que la capa de transacciones verifica antes de confirmar una escritura masiva.
type BulkDeductionReport struct {
	Results    []DeductionLine
	TotalCost  decimal.Decimal
	CanProceed bool
}

// CalculateBulkDeductions calcula cada descuento como una venta. Las líneas que repiten ítem
// se aplican sobre el stock que dejó la línea anterior.
func CalculateBulkDeductions(items []*entity.InventoryItem, deductions []IngredientDeduction) BulkDeductionReport {
	state := make(map[string]*entity.InventoryItem, len(items))
	for _, it := range items {
		if it != nil {
			state[it.ID] = it.Clone()
		}
	}

	report := BulkDeductionReport{TotalCost: decimal.Zero, CanProceed: true}
	for _, ded := range deductions {
		line := DeductionLine{InventoryItemID: ded.InventoryItemID, Quantity: ded.Quantity}
		cost := ded.CostOverride

		item, ok := state[ded.InventoryItemID]
		switch {
		case !ok:
			line.Error = "inventory item not found: " + ded.InventoryItemID
		case !ded.Quantity.IsPositive():
			line.Error = "deduction quantity must be positive: " + ded.Quantity.String()
		default:
			// CostOverride va por unidad de la deducción, igual que en la transacción
			qty, perItemUnit, err := ToItemUnit(ded.Quantity, ded.CostOverride, ded.Unit, item.Unit)
			if err != nil {
				line.Error = fmt.Sprintf("incompatible units: %s cannot be converted to %s", ded.Unit, item.Unit)
				break
			}
			line.Quantity, cost = qty, perItemUnit
		}

		if line.Error == "" {
			res := CalculateStockChange(item, line.Quantity.Neg(), entity.MovementTypeSale, cost, "")
			line.Result = &res
			if res.Success {
				item.CurrentStock = res.NewStock
				if res.TotalCost != nil {
					report.TotalCost = precision.Add(report.TotalCost, *res.TotalCost, precision.DefaultPlaces)
				}
			}
		}
		if line.Failed() {
			report.CanProceed = false
		}
		report.Results = append(report.Results, line)
	}
	return report
}
