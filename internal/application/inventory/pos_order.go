package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/precision"
)

// POSOrderItem línea de una orden del punto de venta. Ingredients son las cantidades por
// unidad vendida; las define el llamador a partir de la receta.
type POSOrderItem struct {
	MenuItemID  string
	Name        string
	Quantity    decimal.Decimal
	Ingredients []inventory.IngredientDeduction
}

// ProcessPOSOrder descuenta los ingredientes de todas las líneas de la orden en una sola transacción.
// Cada movimiento es una venta con referenceId = orderID.
func (s *LedgerService) ProcessPOSOrder(ctx context.Context, orderID string, items []POSOrderItem, actor Actor) (*TransactionResult, error) {
	ops, err := posOperations(orderID, items)
	if err != nil {
		return s.reject(OperationPOSOrder, err)
	}
	if err := s.checkBatchSize(len(ops)); err != nil {
		return s.reject(OperationPOSOrder, err)
	}
	if err := checkReferences(ops); err != nil {
		return s.reject(OperationPOSOrder, err)
	}
	return s.run(ctx, envelope{
		operation:  OperationPOSOrder,
		actor:      actor,
		plan:       staticPlan(ops),
		checkScope: actorScope(actor),
	})
}

// PreviewPOSOrder calcula el descuento de la orden sin escribir nada.
func (s *LedgerService) PreviewPOSOrder(ctx context.Context, items []POSOrderItem, actor Actor) (*inventory.BulkDeductionReport, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.PreviewPOSOrder")
	defer span.End()

	deductions, err := flattenDeductions(items)
	if err != nil {
		return nil, err
	}

	scope := actorScope(actor)
	seen := make(map[string]struct{}, len(deductions))
	stock := make([]*entity.InventoryItem, 0, len(deductions))
	for _, d := range deductions {
		if _, ok := seen[d.InventoryItemID]; ok {
			continue
		}
		seen[d.InventoryItemID] = struct{}{}
		item, err := s.itemRepo.Get(ctx, d.InventoryItemID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// la línea queda marcada como fallida en el reporte
				continue
			}
			return nil, err
		}
		if err := scope(item); err != nil {
			return nil, err
		}
		stock = append(stock, item)
	}

	report := inventory.CalculateBulkDeductions(stock, deductions)
	return &report, nil
}

func posOperations(orderID string, items []POSOrderItem) ([]StockOperation, error) {
	if orderID == "" {
		return nil, abort(domain.ErrValidation, "order id is required")
	}
	deductions, err := flattenDeductions(items)
	if err != nil {
		return nil, err
	}

	ops := make([]StockOperation, 0, len(deductions))
	for _, line := range items {
		name := line.Name
		if name == "" {
			name = line.MenuItemID
		}
		reason := fmt.Sprintf("POS order %s: %s x%s", orderID, name, line.Quantity.String())
		for _, ing := range line.Ingredients {
			ops = append(ops, StockOperation{
				InventoryItemID: ing.InventoryItemID,
				QuantityChange:  precision.Multiply(ing.Quantity, line.Quantity, precision.DefaultPlaces).Neg(),
				Type:            entity.MovementTypeSale,
				Unit:            ing.Unit,
				UnitCost:        ing.CostOverride,
				Reason:          reason,
				ReferenceID:     orderID,
			})
		}
	}
	return ops, nil
}

// flattenDeductions multiplica los ingredientes de cada línea por la cantidad vendida.
func flattenDeductions(items []POSOrderItem) ([]inventory.IngredientDeduction, error) {
	if len(items) == 0 {
		return nil, abort(domain.ErrValidation, "order has no items")
	}
	var out []inventory.IngredientDeduction
	var errs []string
	for i, line := range items {
		if !line.Quantity.IsPositive() {
			errs = append(errs, fmt.Sprintf("item %d (%s): quantity must be positive", i+1, line.MenuItemID))
			continue
		}
		for _, ing := range line.Ingredients {
			out = append(out, inventory.IngredientDeduction{
				InventoryItemID: ing.InventoryItemID,
				Quantity:        precision.Multiply(ing.Quantity, line.Quantity, precision.DefaultPlaces),
				Unit:            ing.Unit,
				CostOverride:    ing.CostOverride,
			})
		}
	}
	if len(errs) > 0 {
		return nil, abort(domain.ErrValidation, errs...)
	}
	if len(out) == 0 {
		return nil, abort(domain.ErrValidation, "order has no ingredients to deduct")
	}
	return out, nil
}
