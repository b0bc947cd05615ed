package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// afterCommit escribe la auditoría y publica el evento. Ambos son canales laterales:
// un fallo se registra y se cuenta, pero la transacción ya confirmada no se toca.
func (s *LedgerService) afterCommit(
	ctx context.Context,
	env envelope,
	transactionID string,
	changes []applied,
	movements []*entity.StockMovement,
) {
	ctx = context.WithoutCancel(ctx)

	logs := make([]*entity.AuditLog, 0, len(changes)+1)
	for _, ch := range changes {
		logs = append(logs, movementAudit(transactionID, env.actor.UserID, ch))
	}
	if env.extraAudit != nil {
		logs = append(logs, env.extraAudit(transactionID, movements)...)
	}
	if err := s.auditRepo.CreateMany(ctx, logs); err != nil {
		s.metrics.IncAuditFailure()
		s.log.Warn().Err(err).
			Str("transaction_id", transactionID).
			Int("entries", len(logs)).
			Msg("no se pudo escribir la auditoría de la transacción")
	}

	event := StockMovedEvent{
		TransactionID: transactionID,
		Operation:     env.operation,
		TenantID:      movements[0].TenantID,
		LocationID:    movements[0].LocationID,
		UserID:        env.actor.UserID,
		Movements:     movements,
		OccurredAt:    movements[0].Timestamp,
	}
	if err := s.publisher.PublishStockMoved(ctx, event); err != nil {
		s.metrics.IncPublishFailure()
		s.log.Warn().Err(err).
			Str("transaction_id", transactionID).
			Msg("no se pudo publicar el evento de inventario")
	}
}

// movementAudit snapshot de stock y costo antes y después de un movimiento.
// Los decimales se guardan como string para que JSONB y BSON los conserven exactos.
// La entrada lleva la marca de tiempo que el almacén asignó al movimiento.
func movementAudit(transactionID, userID string, ch applied) *entity.AuditLog {
	mov := ch.movement
	return &entity.AuditLog{
		TransactionID: transactionID,
		Action:        entity.AuditActionStockMovement,
		TargetType:    entity.AuditTargetInventory,
		TargetID:      mov.InventoryItemID,
		BeforeData: map[string]any{
			"currentStock": mov.QuantityBefore.String(),
			"costPerUnit":  ch.costBefore.String(),
		},
		AfterData: map[string]any{
			"currentStock":    mov.QuantityAfter.String(),
			"costPerUnit":     ch.costAfter.String(),
			"movementId":      mov.ID,
			"movementType":    string(mov.Type),
			"quantityChanged": mov.QuantityChanged.String(),
		},
		UserID:     userID,
		TenantID:   mov.TenantID,
		LocationID: mov.LocationID,
		Timestamp:  mov.Timestamp,
	}
}
