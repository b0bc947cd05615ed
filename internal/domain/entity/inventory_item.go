package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem representa un insumo con stock en una sede de un tenant.
// CurrentStock y CostPerUnit solo cambian dentro de una transacción confirmada del ledger.
type InventoryItem struct {
	ID           string
	Name         string
	CurrentStock decimal.Decimal
	Unit         string          // familia de conversión: ml, l, g, kg, unit, ...
	CostPerUnit  decimal.Decimal // costo promedio ponderado
	MinStock     decimal.Decimal
	MaxStock     *decimal.Decimal // opcional
	LastUpdated  time.Time
	TenantID     string
	LocationID   string
}

// Clone devuelve una copia independiente (MaxStock incluido).
func (i *InventoryItem) Clone() *InventoryItem {
	if i == nil {
		return nil
	}
	c := *i
	if i.MaxStock != nil {
		m := *i.MaxStock
		c.MaxStock = &m
	}
	return &c
}

// BelongsTo indica si el ítem pertenece al tenant y sede indicados.
func (i *InventoryItem) BelongsTo(tenantID, locationID string) bool {
	return i.TenantID == tenantID && i.LocationID == locationID
}
