package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ValidateInventoryItem devuelve los errores de un ítem mal formado (vacío si es válido).
// decimal.Decimal siempre es numérico, por eso solo se verifican presencia y signo.
func ValidateInventoryItem(item *entity.InventoryItem) []string {
	if item == nil {
		return []string{"inventory item is required"}
	}
	var errs []string
	if strings.TrimSpace(item.ID) == "" {
		errs = append(errs, "inventory item id is required")
	}
	if strings.TrimSpace(item.Name) == "" {
		errs = append(errs, "inventory item name is required")
	}
	if strings.TrimSpace(item.Unit) == "" {
		errs = append(errs, "inventory item unit is required")
	}
	if item.CurrentStock.IsNegative() {
		errs = append(errs, "current stock cannot be negative: "+item.CurrentStock.String())
	}
	if item.CostPerUnit.IsNegative() {
		errs = append(errs, "cost per unit cannot be negative: "+item.CostPerUnit.String())
	}
	return errs
}

// ValidateStockMovement valida la forma del movimiento: ítem, tipo de la lista cerrada y cantidad distinta de cero.
func ValidateStockMovement(itemID string, quantityChanged decimal.Decimal, movementType entity.MovementType) []string {
	var errs []string
	if strings.TrimSpace(itemID) == "" {
		errs = append(errs, "inventory item id is required")
	}
	switch {
	case movementType == "":
		errs = append(errs, "movement type is required")
	case !movementType.IsValid():
		errs = append(errs, "unknown movement type: "+string(movementType))
	}
	if quantityChanged.IsZero() {
		errs = append(errs, "quantity changed must be non-zero")
	}
	return errs
}
