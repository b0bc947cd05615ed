package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryItemRepository define el puerto de persistencia para ítems de inventario.
// Dentro de una transacción, GetForUpdate bloquea (o marca para detección de conflicto) el ítem leído.
type InventoryItemRepository interface {
	Get(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	// UpdateStock escribe CurrentStock, CostPerUnit y LastUpdated.
	UpdateStock(ctx context.Context, item *entity.InventoryItem) error
	ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.InventoryItem, error)
}
