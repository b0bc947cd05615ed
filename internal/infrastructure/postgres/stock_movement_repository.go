package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, inventory_item_id, inventory_item_name, type, quantity_before, quantity_changed,
	quantity_after, unit_cost, total_cost, reason, reference_id, transaction_id, created_at, user_id, tenant_id, location_id`

// Create persiste un movimiento. Asigna ID si viene vacío; sin Timestamp usa now() del servidor
// (hora de inicio de la transacción, común a todo el lote) y lo devuelve en m.Timestamp.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	var ts *time.Time
	if !m.Timestamp.IsZero() {
		ts = &m.Timestamp
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, COALESCE($13::timestamptz, now()), $14, $15, $16)
		RETURNING created_at`,
		m.ID, m.InventoryItemID, m.InventoryItemName, string(m.Type),
		m.QuantityBefore, m.QuantityChanged, m.QuantityAfter, m.UnitCost, m.TotalCost,
		m.Reason, nullIfEmpty(m.ReferenceID), m.TransactionID, ts,
		m.UserID, m.TenantID, m.LocationID,
	).Scan(&m.Timestamp)
	if err != nil {
		return mapError("create stock movement", err)
	}
	return nil
}

func (r *StockMovementRepo) list(ctx context.Context, op, where string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements `+where, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var mt string
		var ref *string
		if err := rows.Scan(&m.ID, &m.InventoryItemID, &m.InventoryItemName, &mt,
			&m.QuantityBefore, &m.QuantityChanged, &m.QuantityAfter, &m.UnitCost, &m.TotalCost,
			&m.Reason, &ref, &m.TransactionID, &m.Timestamp, &m.UserID, &m.TenantID, &m.LocationID); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(mt)
		m.ReferenceID = derefString(ref)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListByTransaction devuelve los movimientos de una transacción en orden de escritura.
func (r *StockMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, "list movements by transaction", `WHERE transaction_id = $1 ORDER BY seq`, transactionID)
}

// ListByItem devuelve los últimos movimientos de un ítem, más recientes primero.
func (r *StockMovementRepo) ListByItem(ctx context.Context, itemID string, limit int) ([]*entity.StockMovement, error) {
	return r.list(ctx, "list movements by item",
		`WHERE inventory_item_id = $1 ORDER BY created_at DESC, seq DESC LIMIT $2`, itemID, limit)
}

// ListByReference devuelve los movimientos que referencian a referenceID (p. ej. reversiones).
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, "list movements by reference", `WHERE reference_id = $1 ORDER BY seq`, referenceID)
}

// SalesUsageSince suma las ventas por ítem desde since.
func (r *StockMovementRepo) SalesUsageSince(ctx context.Context, tenantID, locationID string, since time.Time) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT inventory_item_id, SUM(ABS(quantity_changed))
		FROM stock_movements
		WHERE tenant_id = $1 AND location_id = $2 AND type = $3 AND created_at >= $4
		GROUP BY inventory_item_id`,
		tenantID, locationID, string(entity.MovementTypeSale), since,
	)
	if err != nil {
		return nil, mapError("sales usage", err)
	}
	defer rows.Close()
	usage := make(map[string]decimal.Decimal)
	for rows.Next() {
		var id string
		var total decimal.Decimal
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan sales usage: %w", err)
		}
		usage[id] = total
	}
	return usage, rows.Err()
}
