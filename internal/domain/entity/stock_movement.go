package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del ledger.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeSale       MovementType = "sale"
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeWaste      MovementType = "waste"
	MovementTypeReturn     MovementType = "return"
)

// MovementTypes lista cerrada de tipos válidos.
var MovementTypes = []MovementType{
	MovementTypeSale,
	MovementTypePurchase,
	MovementTypeAdjustment,
	MovementTypeTransfer,
	MovementTypeWaste,
	MovementTypeReturn,
}

// IsValid indica si el tipo pertenece a la lista cerrada.
func (t MovementType) IsValid() bool {
	for _, v := range MovementTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (t MovementType) String() string { return string(t) }

// StockMovement es una entrada inmutable del ledger.
// Invariante: QuantityAfter = QuantityBefore + QuantityChanged.
type StockMovement struct {
	ID                string
	InventoryItemID   string
	InventoryItemName string
	Type              MovementType
	QuantityBefore    decimal.Decimal
	QuantityChanged   decimal.Decimal // con signo
	QuantityAfter     decimal.Decimal
	UnitCost          *decimal.Decimal
	TotalCost         *decimal.Decimal
	Reason            string
	ReferenceID       string // p. ej. id de la orden POS o de la transacción revertida
	TransactionID     string
	Timestamp         time.Time
	UserID            string
	TenantID          string
	LocationID        string
}
