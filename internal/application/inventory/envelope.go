package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/precision"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// envelope describe una transacción del ledger: qué operaciones aplicar y qué verificar antes de escribir.
type envelope struct {
	operation string
	actor     Actor
	opts      MovementOptions
	// plan produce las operaciones dentro de la transacción. Se vuelve a evaluar si el almacén reintenta.
	plan func(ctx context.Context, itemRepo repository.InventoryItemRepository, movRepo repository.StockMovementRepository) ([]StockOperation, error)
	// checkScope decide si el operador puede mover el ítem.
	checkScope func(item *entity.InventoryItem) error
	// guard corre con los ítems ya bloqueados, antes de calcular.
	guard func(ctx context.Context, movRepo repository.StockMovementRepository) error
	// extraAudit entradas adicionales a las de cada movimiento.
	extraAudit func(transactionID string, movements []*entity.StockMovement) []*entity.AuditLog
}

// applied movimiento calculado con el costo promedio antes y después.
type applied struct {
	movement   *entity.StockMovement
	costBefore decimal.Decimal
	costAfter  decimal.Decimal
}

func staticPlan(ops []StockOperation) func(context.Context, repository.InventoryItemRepository, repository.StockMovementRepository) ([]StockOperation, error) {
	return func(context.Context, repository.InventoryItemRepository, repository.StockMovementRepository) ([]StockOperation, error) {
		return ops, nil
	}
}

// actorScope exige que el ítem sea del tenant y sede del operador.
func actorScope(actor Actor) func(*entity.InventoryItem) error {
	return func(item *entity.InventoryItem) error {
		if !item.BelongsTo(actor.TenantID, actor.LocationID) {
			return abort(domain.ErrForbidden,
				fmt.Sprintf("access denied: inventory item %s belongs to another tenant or location", item.ID))
		}
		return nil
	}
}

// run ejecuta el sobre atómico: leer y bloquear, validar, calcular y escribir; todo o nada.
// Auditoría, métricas y eventos se emiten después del commit y nunca revierten la transacción.
func (s *LedgerService) run(ctx context.Context, env envelope) (*TransactionResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "inventory."+env.operation, trace.WithAttributes(
		attribute.String("ledger.operation", env.operation),
		attribute.String("ledger.tenant_id", env.actor.TenantID),
		attribute.String("ledger.location_id", env.actor.LocationID),
		attribute.Bool("ledger.skip_validation", env.opts.SkipValidation),
		attribute.Bool("ledger.halt_on_warnings", env.opts.HaltOnWarnings),
	))
	defer span.End()

	transactionID := uuid.New().String()

	var (
		changes  []applied
		warnings []string
	)
	err := s.txRunner.Run(ctx, func(itemRepo repository.InventoryItemRepository, movRepo repository.StockMovementRepository) error {
		changes, warnings = nil, nil

		ops, err := env.plan(ctx, itemRepo, movRepo)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			return nil
		}
		if errs := validateOperations(ops); len(errs) > 0 {
			return abort(domain.ErrValidation, errs...)
		}

		state, order, err := lockItems(ctx, itemRepo, ops, env.checkScope)
		if err != nil {
			return err
		}
		if env.guard != nil {
			if err := env.guard(ctx, movRepo); err != nil {
				return err
			}
		}

		var errs []string
		for i, op := range ops {
			ch, lineWarnings, lineErrs := calculate(state[op.InventoryItemID], op, env.opts)
			for _, e := range lineErrs {
				errs = append(errs, fmt.Sprintf("operation %d (%s): %s", i+1, op.InventoryItemID, e))
			}
			for _, w := range lineWarnings {
				warnings = append(warnings, fmt.Sprintf("operation %d (%s): %s", i+1, op.InventoryItemID, w))
			}
			if len(lineErrs) == 0 {
				changes = append(changes, ch)
			}
		}
		if len(errs) > 0 {
			return abort(classify(errs), errs...)
		}
		if env.opts.HaltOnWarnings && len(warnings) > 0 {
			return abort(domain.ErrWarningsNotAllowed, "batch produced warnings and halt on warnings is set")
		}

		for _, id := range order {
			if err := itemRepo.UpdateStock(ctx, state[id]); err != nil {
				return err
			}
		}
		for _, ch := range changes {
			mov := ch.movement
			mov.ID = uuid.New().String()
			mov.TransactionID = transactionID
			// Timestamp lo asigna el almacén al crear el movimiento
			mov.Timestamp = time.Time{}
			mov.UserID = env.actor.UserID
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		reasons := reasonsOf(err)
		s.metrics.ObserveTransaction(env.operation, false, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn().
			Str("operation", env.operation).
			Str("tenant_id", env.actor.TenantID).
			Str("user_id", env.actor.UserID).
			Strs("reasons", reasons).
			Msg("transacción de inventario abortada")
		return &TransactionResult{Success: false, Warnings: warnings, Errors: reasons}, err
	}

	s.metrics.ObserveTransaction(env.operation, true, elapsed)
	if len(changes) == 0 {
		span.SetStatus(codes.Ok, "no-op")
		return &TransactionResult{Success: true, Warnings: warnings}, nil
	}

	movements := make([]*entity.StockMovement, 0, len(changes))
	for _, ch := range changes {
		movements = append(movements, ch.movement)
		s.metrics.IncMovement(ch.movement.Type)
	}
	s.afterCommit(ctx, env, transactionID, changes, movements)

	span.SetAttributes(
		attribute.String("ledger.transaction_id", transactionID),
		attribute.Int("ledger.movements", len(movements)),
	)
	span.SetStatus(codes.Ok, "committed")
	s.log.Info().
		Str("operation", env.operation).
		Str("transaction_id", transactionID).
		Int("movements", len(movements)).
		Int("warnings", len(warnings)).
		Dur("elapsed", elapsed).
		Msg("transacción de inventario confirmada")

	return &TransactionResult{
		Success:       true,
		TransactionID: transactionID,
		Movements:     movements,
		Warnings:      warnings,
	}, nil
}

// reject registra el rechazo de una petición antes de abrir la transacción.
func (s *LedgerService) reject(operation string, err error) (*TransactionResult, error) {
	s.metrics.ObserveTransaction(operation, false, 0)
	return &TransactionResult{Success: false, Errors: reasonsOf(err)}, err
}

// validateOperations valida la forma de cada operación. Estos errores bloquean siempre, aun con SkipValidation.
func validateOperations(ops []StockOperation) []string {
	var errs []string
	for i, op := range ops {
		for _, e := range inventory.ValidateStockMovement(op.InventoryItemID, op.QuantityChange, op.Type) {
			errs = append(errs, fmt.Sprintf("operation %d: %s", i+1, e))
		}
		if op.UnitCost != nil && op.UnitCost.IsNegative() {
			errs = append(errs, fmt.Sprintf("operation %d: unit cost cannot be negative: %s", i+1, op.UnitCost.String()))
		}
	}
	return errs
}

// lockItems lee con bloqueo cada ítem distinto, en orden de id para que transacciones concurrentes
// sobre los mismos ítems no se bloqueen mutuamente.
func lockItems(
	ctx context.Context,
	itemRepo repository.InventoryItemRepository,
	ops []StockOperation,
	checkScope func(*entity.InventoryItem) error,
) (map[string]*entity.InventoryItem, []string, error) {
	seen := make(map[string]struct{}, len(ops))
	order := make([]string, 0, len(ops))
	for _, op := range ops {
		if _, ok := seen[op.InventoryItemID]; !ok {
			seen[op.InventoryItemID] = struct{}{}
			order = append(order, op.InventoryItemID)
		}
	}
	sort.Strings(order)

	state := make(map[string]*entity.InventoryItem, len(order))
	for _, id := range order {
		item, err := itemRepo.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil, abort(domain.ErrNotFound, "inventory item not found: "+id)
			}
			return nil, nil, err
		}
		if checkScope != nil {
			if err := checkScope(item); err != nil {
				return nil, nil, err
			}
		}
		state[id] = item
	}
	return state, order, nil
}

// calculate aplica una operación sobre el estado en curso del ítem (lo modifica si tiene éxito).
func calculate(item *entity.InventoryItem, op StockOperation, opts MovementOptions) (applied, []string, []string) {
	qty := op.QuantityChange
	unitCost := op.UnitCost

	if op.Unit != "" && precision.NormalizeUnit(op.Unit) != precision.NormalizeUnit(item.Unit) {
		converted, perItemUnit, err := inventory.ToItemUnit(qty, unitCost, op.Unit, item.Unit)
		if err != nil {
			return applied{}, nil, []string{fmt.Sprintf("incompatible units: %s cannot be converted to %s", op.Unit, item.Unit)}
		}
		if precision.Round(converted, precision.StockPlaces).IsZero() {
			return applied{}, nil, []string{fmt.Sprintf("quantity %s %s rounds to zero in %s", qty.String(), op.Unit, item.Unit)}
		}
		qty, unitCost = converted, perItemUnit
	}

	var res inventory.CalculationResult
	if opts.SkipValidation {
		res = inventory.ApplyStockChange(item, qty, op.Type, unitCost, op.Reason)
	} else {
		res = inventory.CalculateStockChange(item, qty, op.Type, unitCost, op.Reason)
	}
	if !res.Success {
		return applied{}, res.Warnings, res.Errors
	}

	mov := res.Movement
	if mov.QuantityChanged.IsZero() {
		return applied{}, nil, []string{"quantity changed rounds to zero at stock precision"}
	}
	if !inventory.ValidateCalculationConsistency(mov.QuantityBefore, mov.QuantityChanged, mov.QuantityAfter, inventory.ConsistencyTolerance) {
		return applied{}, nil, []string{fmt.Sprintf("inconsistent calculation: %s + %s != %s",
			mov.QuantityBefore.String(), mov.QuantityChanged.String(), mov.QuantityAfter.String())}
	}

	costBefore := item.CostPerUnit
	costAfter := costBefore
	if op.Type == entity.MovementTypePurchase && unitCost != nil && mov.QuantityChanged.IsPositive() {
		costAfter = precision.WeightedAverageCost(item.CurrentStock, costBefore, mov.QuantityChanged, *unitCost)
	}
	mov.ReferenceID = op.ReferenceID

	item.CurrentStock = res.NewStock
	item.CostPerUnit = costAfter
	return applied{movement: mov, costBefore: costBefore, costAfter: costAfter}, res.Warnings, nil
}
