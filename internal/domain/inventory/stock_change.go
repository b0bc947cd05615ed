package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/precision"
)

// CalculateStockChange valida el ítem y el movimiento, aplica la política de stock negativo
// y construye el StockMovement sin persistir. Nunca devuelve error: todo va en Errors/Warnings.
// Si hay errores, NewStock conserva el stock actual.
func CalculateStockChange(
	item *entity.InventoryItem,
	quantityChange decimal.Decimal,
	movementType entity.MovementType,
	unitCost *decimal.Decimal,
	reason string,
) CalculationResult {
	res := CalculationResult{}
	itemID := ""
	if item != nil {
		res.NewStock = item.CurrentStock
		itemID = item.ID
	}

	errs := ValidateInventoryItem(item)
	errs = append(errs, ValidateStockMovement(itemID, quantityChange, movementType)...)
	if len(errs) > 0 {
		res.Errors = dedupe(errs)
		return res
	}

	quantityChange = precision.Round(quantityChange, precision.StockPlaces)
	if quantityChange.IsZero() {
		res.Errors = append(res.Errors, "quantity changed rounds to zero at stock precision")
		return res
	}
	newStock := nextStock(item.CurrentStock, quantityChange)
	if newStock.IsNegative() {
		if movementType == entity.MovementTypeSale {
			res.Errors = append(res.Errors, fmt.Sprintf("insufficient stock: requested %s, available %s",
				quantityChange.Abs().String(), item.CurrentStock.String()))
			return res
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("stock will be negative after %s: %s", movementType, newStock.String()))
	}

	return buildChange(item, newStock, quantityChange, movementType, unitCost, reason, res.Warnings)
}

// ApplyStockChange calcula el cambio sin validar el ítem ni la política de stock.
// La usa la capa de transacciones cuando el llamador pidió skipValidation.
func ApplyStockChange(
	item *entity.InventoryItem,
	quantityChange decimal.Decimal,
	movementType entity.MovementType,
	unitCost *decimal.Decimal,
	reason string,
) CalculationResult {
	if item == nil {
		return CalculationResult{Errors: []string{"inventory item is required"}}
	}
	quantityChange = precision.Round(quantityChange, precision.StockPlaces)
	newStock := nextStock(item.CurrentStock, quantityChange)
	var warnings []string
	if newStock.IsNegative() {
		warnings = append(warnings, fmt.Sprintf("stock will be negative after %s: %s", movementType, newStock.String()))
	}
	return buildChange(item, newStock, quantityChange, movementType, unitCost, reason, warnings)
}

// nextStock suma el cambio (ya redondeado a StockPlaces) al stock actual sin volver a redondear:
// quantityAfter == quantityBefore + quantityChanged exacto aunque el stock guardado tenga más decimales.
func nextStock(current, roundedChange decimal.Decimal) decimal.Decimal {
	return current.Add(roundedChange)
}

func buildChange(
	item *entity.InventoryItem,
	newStock, quantityChange decimal.Decimal,
	movementType entity.MovementType,
	unitCost *decimal.Decimal,
	reason string,
	warnings []string,
) CalculationResult {
	if newStock.LessThan(item.MinStock) {
		warnings = append(warnings, fmt.Sprintf("stock below minimum: %s < %s", newStock.String(), item.MinStock.String()))
	}
	if item.MaxStock != nil && newStock.GreaterThan(*item.MaxStock) {
		warnings = append(warnings, fmt.Sprintf("stock above maximum: %s > %s", newStock.String(), item.MaxStock.String()))
	}

	cost := item.CostPerUnit
	if unitCost != nil {
		cost = *unitCost
	}
	// el costo total se calcula sobre la cantidad ya redondeada que realmente se mueve
	totalCost := precision.Multiply(quantityChange.Abs(), cost, precision.DefaultPlaces)

	mov := &entity.StockMovement{
		InventoryItemID:   item.ID,
		InventoryItemName: item.Name,
		Type:              movementType,
		QuantityBefore:    item.CurrentStock,
		QuantityChanged:   quantityChange,
		QuantityAfter:     newStock,
		UnitCost:          &cost,
		TotalCost:         &totalCost,
		Reason:            reason,
		TenantID:          item.TenantID,
		LocationID:        item.LocationID,
	}
	return CalculationResult{
		Success:   true,
		NewStock:  newStock,
		TotalCost: &totalCost,
		Warnings:  warnings,
		Movement:  mov,
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
