package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReverseTransaction escribe una transacción compensatoria: un ajuste por cada movimiento original
// con la cantidad negada y referenceId = ReversalReference(originalTransactionID). Los movimientos originales no se tocan.
// Se aplica sin validación de política y continuando ante advertencias. Si actor.TenantID viene
// informado, los ítems deben pertenecer a ese tenant.
func (s *LedgerService) ReverseTransaction(ctx context.Context, originalTransactionID string, actor Actor, reason string) (*TransactionResult, error) {
	if originalTransactionID == "" {
		return s.reject(OperationReversal, abort(domain.ErrValidation, "transaction id is required"))
	}
	if reason == "" {
		reason = "reversal of transaction " + originalTransactionID
	}

	return s.run(ctx, envelope{
		operation: OperationReversal,
		actor:     actor,
		opts:      MovementOptions{SkipValidation: true},
		plan: func(ctx context.Context, _ repository.InventoryItemRepository, movRepo repository.StockMovementRepository) ([]StockOperation, error) {
			original, err := movRepo.ListByTransaction(ctx, originalTransactionID)
			if err != nil {
				return nil, err
			}
			if len(original) == 0 {
				return nil, abort(domain.ErrNotFound, "transaction not found: "+originalTransactionID)
			}
			ops := make([]StockOperation, 0, len(original))
			for _, m := range original {
				ops = append(ops, StockOperation{
					InventoryItemID: m.InventoryItemID,
					QuantityChange:  m.QuantityChanged.Neg(),
					Type:            entity.MovementTypeAdjustment,
					Reason:          reason,
					ReferenceID:     ReversalReference(originalTransactionID),
				})
			}
			return ops, nil
		},
		checkScope: func(item *entity.InventoryItem) error {
			if actor.TenantID != "" && item.TenantID != actor.TenantID {
				return abort(domain.ErrForbidden,
					fmt.Sprintf("access denied: inventory item %s belongs to another tenant", item.ID))
			}
			return nil
		},
		guard: func(ctx context.Context, movRepo repository.StockMovementRepository) error {
			// solo la reversión escribe el prefijo reservado
			refs, err := movRepo.ListByReference(ctx, ReversalReference(originalTransactionID))
			if err != nil {
				return err
			}
			if len(refs) > 0 {
				return abort(domain.ErrAlreadyReversed,
					fmt.Sprintf("transaction %s was already reversed by %s", originalTransactionID, refs[0].TransactionID))
			}
			return nil
		},
		extraAudit: func(transactionID string, movements []*entity.StockMovement) []*entity.AuditLog {
			return []*entity.AuditLog{{
				TransactionID: transactionID,
				Action:        entity.AuditActionReverseTransaction,
				TargetType:    entity.AuditTargetTransaction,
				TargetID:      originalTransactionID,
				BeforeData:    map[string]any{"transactionId": originalTransactionID},
				AfterData: map[string]any{
					"reversalTransactionId": transactionID,
					"movements":             len(movements),
					"reason":                reason,
				},
				UserID:     actor.UserID,
				TenantID:   movements[0].TenantID,
				LocationID: movements[0].LocationID,
				Timestamp:  movements[0].Timestamp,
			}}
		},
	})
}
