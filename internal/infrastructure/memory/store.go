// Package memory implementa el almacén transaccional en memoria. Se usa en modo
// desarrollo (STORE_DRIVER=memory) y como doble de prueba de la capa de transacciones.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Store guarda ítems, movimientos y auditoría. Las transacciones se serializan con mu:
// cada una ve el estado confirmado y sus escrituras se aplican solo si fn no falla.
type Store struct {
	mu        sync.RWMutex
	items     map[string]*entity.InventoryItem
	movements []*entity.StockMovement
	audits    []*entity.AuditLog
	now       func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		items: make(map[string]*entity.InventoryItem),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Seed inserta o reemplaza ítems (aprovisionamiento externo).
func (s *Store) Seed(items ...*entity.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		c := it.Clone()
		if c.LastUpdated.IsZero() {
			c.LastUpdated = s.now()
		}
		s.items[c.ID] = c
	}
}

// Item devuelve una copia del ítem confirmado (nil si no existe).
func (s *Store) Item(id string) *entity.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[id].Clone()
}

// MovementCount número de movimientos confirmados.
func (s *Store) MovementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movements)
}

// AuditCount número de entradas de auditoría confirmadas.
func (s *Store) AuditCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.audits)
}

// Run ejecuta fn con repositorios atados a una transacción y confirma si fn no devuelve error.
func (s *Store) Run(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// una sola marca de tiempo por transacción, como now() en Postgres
	tx := &txView{store: s, staged: make(map[string]*entity.InventoryItem), startedAt: s.now()}
	if err := fn(tx, &txMovements{tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// commit
	for id, it := range tx.staged {
		s.items[id] = it
	}
	s.movements = append(s.movements, tx.movements...)
	return nil
}

// Items repositorio de lectura de ítems fuera de transacción.
func (s *Store) Items() repository.InventoryItemRepository { return &itemReader{store: s} }

// Movements repositorio del ledger fuera de transacción.
func (s *Store) Movements() repository.StockMovementRepository { return &movementReader{store: s} }

// AuditLogs repositorio de auditoría.
func (s *Store) AuditLogs() repository.AuditLogRepository { return &auditRepo{store: s} }

// ──────────────────────────────────────────────────────────────────────────────
// Vista transaccional
// ──────────────────────────────────────────────────────────────────────────────

type txView struct {
	store     *Store
	staged    map[string]*entity.InventoryItem
	movements []*entity.StockMovement
	startedAt time.Time
}

func (t *txView) Get(_ context.Context, id string) (*entity.InventoryItem, error) {
	if it, ok := t.staged[id]; ok {
		return it.Clone(), nil
	}
	it, ok := t.store.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return it.Clone(), nil
}

func (t *txView) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return t.Get(ctx, id)
}

func (t *txView) UpdateStock(_ context.Context, item *entity.InventoryItem) error {
	base, ok := t.staged[item.ID]
	if !ok {
		committed, exists := t.store.items[item.ID]
		if !exists {
			return domain.ErrNotFound
		}
		base = committed.Clone()
	}
	base.CurrentStock = item.CurrentStock
	base.CostPerUnit = item.CostPerUnit
	base.LastUpdated = t.startedAt
	t.staged[item.ID] = base
	return nil
}

func (t *txView) ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.InventoryItem, error) {
	return listByLocation(t.store, tenantID, locationID), nil
}

type txMovements struct {
	tx *txView
}

func (m *txMovements) Create(_ context.Context, movement *entity.StockMovement) error {
	c := *movement
	if c.ID == "" {
		c.ID = uuid.New().String()
		movement.ID = c.ID
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = m.tx.startedAt
		movement.Timestamp = c.Timestamp
	}
	m.tx.movements = append(m.tx.movements, &c)
	return nil
}

func (m *txMovements) ListByTransaction(_ context.Context, transactionID string) ([]*entity.StockMovement, error) {
	return filterMovements(m.tx.store.movements, func(mv *entity.StockMovement) bool {
		return mv.TransactionID == transactionID
	}), nil
}

func (m *txMovements) ListByItem(_ context.Context, itemID string, limit int) ([]*entity.StockMovement, error) {
	return latestByItem(m.tx.store.movements, itemID, limit), nil
}

func (m *txMovements) ListByReference(_ context.Context, referenceID string) ([]*entity.StockMovement, error) {
	return filterMovements(m.tx.store.movements, func(mv *entity.StockMovement) bool {
		return mv.ReferenceID == referenceID
	}), nil
}

func (m *txMovements) SalesUsageSince(_ context.Context, tenantID, locationID string, since time.Time) (map[string]decimal.Decimal, error) {
	return salesUsage(m.tx.store.movements, tenantID, locationID, since), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas fuera de transacción
// ──────────────────────────────────────────────────────────────────────────────

type itemReader struct{ store *Store }

func (r *itemReader) Get(_ context.Context, id string) (*entity.InventoryItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	it, ok := r.store.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return it.Clone(), nil
}

func (r *itemReader) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.Get(ctx, id)
}

// UpdateStock fuera de transacción no está permitido: el stock solo cambia dentro del ledger.
func (r *itemReader) UpdateStock(context.Context, *entity.InventoryItem) error {
	return domain.ErrConflict
}

func (r *itemReader) ListByLocation(_ context.Context, tenantID, locationID string) ([]*entity.InventoryItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return listByLocation(r.store, tenantID, locationID), nil
}

type movementReader struct{ store *Store }

// Create fuera de transacción no está permitido.
func (r *movementReader) Create(context.Context, *entity.StockMovement) error {
	return domain.ErrConflict
}

func (r *movementReader) ListByTransaction(_ context.Context, transactionID string) ([]*entity.StockMovement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return filterMovements(r.store.movements, func(mv *entity.StockMovement) bool {
		return mv.TransactionID == transactionID
	}), nil
}

func (r *movementReader) ListByItem(_ context.Context, itemID string, limit int) ([]*entity.StockMovement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return latestByItem(r.store.movements, itemID, limit), nil
}

func (r *movementReader) ListByReference(_ context.Context, referenceID string) ([]*entity.StockMovement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return filterMovements(r.store.movements, func(mv *entity.StockMovement) bool {
		return mv.ReferenceID == referenceID
	}), nil
}

func (r *movementReader) SalesUsageSince(_ context.Context, tenantID, locationID string, since time.Time) (map[string]decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return salesUsage(r.store.movements, tenantID, locationID, since), nil
}

type auditRepo struct{ store *Store }

func (r *auditRepo) CreateMany(_ context.Context, logs []*entity.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, l := range logs {
		c := *l
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.Timestamp.IsZero() {
			c.Timestamp = r.store.now()
		}
		r.store.audits = append(r.store.audits, &c)
	}
	return nil
}

func (r *auditRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.AuditLog, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.AuditLog
	for _, l := range r.store.audits {
		if l.TransactionID == transactionID {
			c := *l
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers (se llaman con el lock tomado)
// ──────────────────────────────────────────────────────────────────────────────

func listByLocation(s *Store, tenantID, locationID string) []*entity.InventoryItem {
	var out []*entity.InventoryItem
	for _, it := range s.items {
		if it.BelongsTo(tenantID, locationID) {
			out = append(out, it.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func filterMovements(all []*entity.StockMovement, keep func(*entity.StockMovement) bool) []*entity.StockMovement {
	var out []*entity.StockMovement
	for _, mv := range all {
		if keep(mv) {
			c := *mv
			out = append(out, &c)
		}
	}
	return out
}

func latestByItem(all []*entity.StockMovement, itemID string, limit int) []*entity.StockMovement {
	var out []*entity.StockMovement
	// el slice está en orden de confirmación; se recorre al revés para tener los más recientes primero
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].InventoryItemID != itemID {
			continue
		}
		c := *all[i]
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func salesUsage(all []*entity.StockMovement, tenantID, locationID string, since time.Time) map[string]decimal.Decimal {
	usage := make(map[string]decimal.Decimal)
	for _, mv := range all {
		if mv.Type != entity.MovementTypeSale || mv.TenantID != tenantID || mv.LocationID != locationID {
			continue
		}
		if mv.Timestamp.Before(since) {
			continue
		}
		usage[mv.InventoryItemID] = usage[mv.InventoryItemID].Add(mv.QuantityChanged.Abs())
	}
	return usage
}
