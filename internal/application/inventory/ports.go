package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ninguna escritura; si no, todas se confirman juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// StockMovedEvent resumen de una transacción confirmada, publicado después del commit.
type StockMovedEvent struct {
	TransactionID string                  `json:"transactionId"`
	Operation     string                  `json:"operation"`
	TenantID      string                  `json:"tenantId"`
	LocationID    string                  `json:"locationId"`
	UserID        string                  `json:"userId"`
	Movements     []*entity.StockMovement `json:"movements"`
	OccurredAt    time.Time               `json:"occurredAt"`
}

// EventPublisher publica eventos post-commit. Un fallo no revierte la transacción.
type EventPublisher interface {
	PublishStockMoved(ctx context.Context, event StockMovedEvent) error
}

// Metrics instrumentación del ledger.
type Metrics interface {
	ObserveTransaction(operation string, success bool, elapsed time.Duration)
	IncMovement(movementType entity.MovementType)
	IncAuditFailure()
	IncPublishFailure()
}

// NopPublisher descarta los eventos (Kafka deshabilitado).
type NopPublisher struct{}

func (NopPublisher) PublishStockMoved(context.Context, StockMovedEvent) error { return nil }

// NopMetrics descarta las métricas.
type NopMetrics struct{}

func (NopMetrics) ObserveTransaction(string, bool, time.Duration) {}
func (NopMetrics) IncMovement(entity.MovementType)                {}
func (NopMetrics) IncAuditFailure()                               {}
func (NopMetrics) IncPublishFailure()                             {}
