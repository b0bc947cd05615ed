package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemColumns = `id, name, current_stock, unit, cost_per_unit, min_stock, max_stock, last_updated, tenant_id, location_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	if err := row.Scan(&it.ID, &it.Name, &it.CurrentStock, &it.Unit, &it.CostPerUnit,
		&it.MinStock, &it.MaxStock, &it.LastUpdated, &it.TenantID, &it.LocationID); err != nil {
		return nil, err
	}
	return &it, nil
}

// Get obtiene un ítem por ID.
func (r *InventoryItemRepo) Get(ctx context.Context, id string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get inventory item", err)
	}
	return it, nil
}

// GetForUpdate obtiene el ítem y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("get inventory item for update", err)
	}
	return it, nil
}

// UpdateStock escribe stock y costo promedio.
func (r *InventoryItemRepo) UpdateStock(ctx context.Context, item *entity.InventoryItem) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_items
		SET current_stock = $2, cost_per_unit = $3, last_updated = now()
		WHERE id = $1`,
		item.ID, item.CurrentStock, item.CostPerUnit,
	)
	if err != nil {
		return mapError("update stock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock %s: %w", item.ID, domain.ErrNotFound)
	}
	return nil
}

// ListByLocation lista los ítems de una sede ordenados por nombre.
func (r *InventoryItemRepo) ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items WHERE tenant_id = $1 AND location_id = $2
		ORDER BY name`, tenantID, locationID)
	if err != nil {
		return nil, mapError("list inventory items", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Insert crea un ítem (aprovisionamiento y tests de integración).
func (r *InventoryItemRepo) Insert(ctx context.Context, item *entity.InventoryItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), $8, $9)`,
		item.ID, item.Name, item.CurrentStock, item.Unit, item.CostPerUnit,
		item.MinStock, item.MaxStock, item.TenantID, item.LocationID,
	)
	if err != nil {
		return mapError("insert inventory item", err)
	}
	return nil
}
