package inventory

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReconcileItem ajusta el stock de un ítem al conteo físico. Una diferencia menor a la tolerancia
// de reconciliación es un no-op exitoso sin transactionId.
func (s *LedgerService) ReconcileItem(ctx context.Context, itemID string, physicalCount decimal.Decimal, actor Actor, reason string) (*TransactionResult, error) {
	if itemID == "" {
		return s.reject(OperationReconcile, abort(domain.ErrValidation, "inventory item id is required"))
	}
	if physicalCount.IsNegative() {
		return s.reject(OperationReconcile, abort(domain.ErrValidation, "physical count cannot be negative"))
	}
	scope := actorScope(actor)

	return s.run(ctx, envelope{
		operation: OperationReconcile,
		actor:     actor,
		plan: func(ctx context.Context, itemRepo repository.InventoryItemRepository, _ repository.StockMovementRepository) ([]StockOperation, error) {
			item, err := itemRepo.GetForUpdate(ctx, itemID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, abort(domain.ErrNotFound, "inventory item not found: "+itemID)
				}
				return nil, err
			}
			if err := scope(item); err != nil {
				return nil, err
			}
			res := inventory.PerformReconciliation(item.CurrentStock, physicalCount, item, reason)
			if !res.Success {
				return nil, abort(domain.ErrValidation, res.Errors...)
			}
			if res.Movement == nil {
				return nil, nil
			}
			return []StockOperation{{
				InventoryItemID: item.ID,
				QuantityChange:  res.Movement.QuantityChanged,
				Type:            entity.MovementTypeAdjustment,
				Reason:          res.Movement.Reason,
			}}, nil
		},
		checkScope: scope,
	})
}
