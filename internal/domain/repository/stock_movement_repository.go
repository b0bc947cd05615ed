package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto del ledger de movimientos (append-only).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByTransaction devuelve los movimientos de una transacción, más antiguos primero.
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error)
	// ListByItem devuelve los últimos movimientos de un ítem, más recientes primero.
	ListByItem(ctx context.Context, itemID string, limit int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error)
	// SalesUsageSince suma las cantidades vendidas (valor absoluto) por ítem desde since.
	SalesUsageSince(ctx context.Context, tenantID, locationID string, since time.Time) (map[string]decimal.Decimal, error)
}
