package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// ExecuteSingleStockMovement aplica un movimiento a un ítem en una transacción propia:
// verifica tenant y sede, calcula, actualiza stock (y costo promedio en compras con costo unitario),
// escribe el movimiento y, tras el commit, su auditoría.
func (s *LedgerService) ExecuteSingleStockMovement(ctx context.Context, op StockOperation, actor Actor, opts MovementOptions) (*TransactionResult, error) {
	if err := checkReferences([]StockOperation{op}); err != nil {
		return s.reject(OperationSingle, err)
	}
	return s.run(ctx, envelope{
		operation:  OperationSingle,
		actor:      actor,
		opts:       opts,
		plan:       staticPlan([]StockOperation{op}),
		checkScope: actorScope(actor),
	})
}

// ExecuteBulkStockMovements aplica N movimientos bajo un mismo transactionId. Si una operación falla
// (o produce advertencias con HaltOnWarnings) no se escribe nada. Las operaciones sobre un mismo ítem
// se encadenan: cada una parte del stock que dejó la anterior.
func (s *LedgerService) ExecuteBulkStockMovements(ctx context.Context, ops []StockOperation, actor Actor, opts MovementOptions) (*TransactionResult, error) {
	if err := s.checkBatchSize(len(ops)); err != nil {
		return s.reject(OperationBulk, err)
	}
	if err := checkReferences(ops); err != nil {
		return s.reject(OperationBulk, err)
	}
	return s.run(ctx, envelope{
		operation:  OperationBulk,
		actor:      actor,
		opts:       opts,
		plan:       staticPlan(ops),
		checkScope: actorScope(actor),
	})
}

func (s *LedgerService) checkBatchSize(n int) error {
	if n == 0 {
		return abort(domain.ErrValidation, "at least one operation is required")
	}
	if s.cfg.MaxBulkOperations > 0 && n > s.cfg.MaxBulkOperations {
		return abort(domain.ErrValidation,
			fmt.Sprintf("batch has %d operations, maximum is %d", n, s.cfg.MaxBulkOperations))
	}
	return nil
}
