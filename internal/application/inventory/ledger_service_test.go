package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ inventory.TxRunner = (*memory.Store)(nil)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var actor = inventory.Actor{UserID: "user-1", TenantID: "tenant-1", LocationID: "loc-1"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

type recordingMetrics struct {
	transactions  map[string]int
	failures      map[string]int
	movements     map[entity.MovementType]int
	auditFailures int
	publishFails  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		transactions: map[string]int{},
		failures:     map[string]int{},
		movements:    map[entity.MovementType]int{},
	}
}

func (m *recordingMetrics) ObserveTransaction(op string, success bool, _ time.Duration) {
	if success {
		m.transactions[op]++
		return
	}
	m.failures[op]++
}
func (m *recordingMetrics) IncMovement(t entity.MovementType) { m.movements[t]++ }
func (m *recordingMetrics) IncAuditFailure()                  { m.auditFailures++ }
func (m *recordingMetrics) IncPublishFailure()                { m.publishFails++ }

type recordingPublisher struct {
	events []inventory.StockMovedEvent
	err    error
}

func (p *recordingPublisher) PublishStockMoved(_ context.Context, e inventory.StockMovedEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type failingAudit struct{}

func (failingAudit) CreateMany(context.Context, []*entity.AuditLog) error {
	return errors.New("audit store down")
}
func (failingAudit) ListByTransaction(context.Context, string) ([]*entity.AuditLog, error) {
	return nil, nil
}

type fixture struct {
	store     *memory.Store
	svc       *inventory.LedgerService
	metrics   *recordingMetrics
	publisher *recordingPublisher
}

func newFixture(t *testing.T, audit repository.AuditLogRepository) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.Seed(
		&entity.InventoryItem{ID: "flour", Name: "Harina", CurrentStock: dec("10"), Unit: "kg",
			CostPerUnit: dec("2"), MinStock: dec("2"), TenantID: "tenant-1", LocationID: "loc-1"},
		&entity.InventoryItem{ID: "milk", Name: "Leche", CurrentStock: dec("5"), Unit: "l",
			CostPerUnit: dec("1.2"), MinStock: dec("1"), TenantID: "tenant-1", LocationID: "loc-1"},
		&entity.InventoryItem{ID: "sugar", Name: "Azúcar", CurrentStock: dec("100"), Unit: "kg",
			CostPerUnit: dec("10"), MinStock: dec("0"), TenantID: "tenant-1", LocationID: "loc-1"},
		&entity.InventoryItem{ID: "other", Name: "Café", CurrentStock: dec("8"), Unit: "kg",
			CostPerUnit: dec("20"), TenantID: "tenant-2", LocationID: "loc-9"},
	)
	if audit == nil {
		audit = store.AuditLogs()
	}
	m := newRecordingMetrics()
	p := &recordingPublisher{}
	svc := inventory.NewLedgerService(store, store.Items(), store.Movements(), audit, p, m, logger.Nop(),
		inventory.LedgerConfig{MaxBulkOperations: 10, RecentMovementsLimit: 50})
	return &fixture{store: store, svc: svc, metrics: m, publisher: p}
}

func (f *fixture) stock(id string) decimal.Decimal { return f.store.Item(id).CurrentStock }

// ──────────────────────────────────────────────────────────────────────────────
// Movimiento individual
// ──────────────────────────────────────────────────────────────────────────────

func TestExecuteSingle_VentaConfirmada(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "flour", QuantityChange: dec("-3"), Type: entity.MovementTypeSale, Reason: "venta mostrador",
	}, actor, inventory.MovementOptions{})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Movements, 1)

	mov := res.Movements[0]
	assert.NotEmpty(t, res.TransactionID)
	assert.Equal(t, res.TransactionID, mov.TransactionID)
	assert.Equal(t, "user-1", mov.UserID)
	assert.True(t, mov.QuantityBefore.Equal(dec("10")))
	assert.True(t, mov.QuantityAfter.Equal(dec("7")))
	assert.True(t, mov.QuantityAfter.Equal(mov.QuantityBefore.Add(mov.QuantityChanged)), "invariante del ledger")
	assert.True(t, mov.TotalCost.Equal(dec("6")))

	assert.True(t, f.stock("flour").Equal(dec("7")))
	assert.Equal(t, 1, f.store.MovementCount())
	assert.Equal(t, 1, f.store.AuditCount())
	assert.Equal(t, 1, f.metrics.transactions[inventory.OperationSingle])
	assert.Equal(t, 1, f.metrics.movements[entity.MovementTypeSale])
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, res.TransactionID, f.publisher.events[0].TransactionID)
}

func TestExecuteSingle_CompraRecalculaCostoPromedio(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "sugar", QuantityChange: dec("50"), Type: entity.MovementTypePurchase, UnitCost: ptr(dec("16")),
	}, actor, inventory.MovementOptions{})
	require.NoError(t, err)
	require.True(t, res.Success)

	item := f.store.Item("sugar")
	assert.True(t, item.CurrentStock.Equal(dec("150")))
	assert.True(t, item.CostPerUnit.Equal(dec("12")), "(100·10 + 50·16) / 150 = 12, got %s", item.CostPerUnit)

	logs, err := f.svc.GetTransactionAuditLog(context.Background(), res.TransactionID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "10", logs[0].BeforeData["costPerUnit"])
	assert.Equal(t, "12", logs[0].AfterData["costPerUnit"])
}

func TestExecuteSingle_StockInsuficienteNoEscribe(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "flour", QuantityChange: dec("-20"), Type: entity.MovementTypeSale,
	}, actor, inventory.MovementOptions{})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	require.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "insufficient stock")

	assert.True(t, f.stock("flour").Equal(dec("10")))
	assert.Zero(t, f.store.MovementCount())
	assert.Zero(t, f.store.AuditCount())
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, 1, f.metrics.failures[inventory.OperationSingle])
}

func TestExecuteSingle_TenantDistintoEsAccesoDenegado(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "other", QuantityChange: dec("-1"), Type: entity.MovementTypeSale,
	}, actor, inventory.MovementOptions{})
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.True(t, f.stock("other").Equal(dec("8")))
	assert.Zero(t, f.store.MovementCount())
}

func TestExecuteSingle_ItemInexistente(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "ghost", QuantityChange: dec("1"), Type: entity.MovementTypePurchase,
	}, actor, inventory.MovementOptions{})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"inventory item not found: ghost"}, res.Errors)
}

func TestExecuteSingle_ConversionDeUnidades(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "flour", QuantityChange: dec("-500"), Unit: "g", Type: entity.MovementTypeSale,
	}, actor, inventory.MovementOptions{})
	require.NoError(t, err)
	assert.True(t, res.Movements[0].QuantityChanged.Equal(dec("-0.5")))
	assert.True(t, f.stock("flour").Equal(dec("9.5")))

	_, err = f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "flour", QuantityChange: dec("-500"), Unit: "ml", Type: entity.MovementTypeSale,
	}, actor, inventory.MovementOptions{})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, f.stock("flour").Equal(dec("9.5")))
}

func TestExecuteSingle_SkipValidationFuerzaElCambio(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "flour", QuantityChange: dec("-12"), Type: entity.MovementTypeSale,
	}, actor, inventory.MovementOptions{SkipValidation: true})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.Warnings)
	assert.True(t, f.stock("flour").Equal(dec("-2")))

	// una operación mal formada bloquea aun con SkipValidation
	_, err = f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "flour", QuantityChange: decimal.Zero, Type: entity.MovementTypeSale,
	}, actor, inventory.MovementOptions{SkipValidation: true})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestExecuteBulk_TodoONada(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.ExecuteBulkStockMovements(context.Background(), []inventory.StockOperation{
		{InventoryItemID: "flour", QuantityChange: dec("-1"), Type: entity.MovementTypeSale},
		{InventoryItemID: "milk", QuantityChange: dec("-50"), Type: entity.MovementTypeSale},
		{InventoryItemID: "sugar", QuantityChange: dec("5"), Type: entity.MovementTypePurchase},
	}, actor, inventory.MovementOptions{})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.False(t, res.Success)
	assert.Empty(t, res.TransactionID)

	assert.True(t, f.stock("flour").Equal(dec("10")))
	assert.True(t, f.stock("milk").Equal(dec("5")))
	assert.True(t, f.stock("sugar").Equal(dec("100")))
	assert.Zero(t, f.store.MovementCount())
	assert.Zero(t, f.store.AuditCount())
}

func TestExecuteBulk_OperacionMalFormadaNoEscribe(t *testing.T) {
	cases := map[string]inventory.StockOperation{
		"cantidad cero":    {InventoryItemID: "milk", QuantityChange: decimal.Zero, Type: entity.MovementTypeSale},
		"tipo desconocido": {InventoryItemID: "milk", QuantityChange: dec("-1"), Type: entity.MovementType("gift")},
		"sin ítem":         {QuantityChange: dec("-1"), Type: entity.MovementTypeSale},
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, nil)

			res, err := f.svc.ExecuteBulkStockMovements(context.Background(), []inventory.StockOperation{
				{InventoryItemID: "flour", QuantityChange: dec("-1"), Type: entity.MovementTypeSale},
				bad,
				{InventoryItemID: "sugar", QuantityChange: dec("5"), Type: entity.MovementTypePurchase},
			}, actor, inventory.MovementOptions{})
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.False(t, res.Success)
			assert.Contains(t, res.Errors[0], "operation 2")

			assert.True(t, f.stock("flour").Equal(dec("10")))
			assert.True(t, f.stock("milk").Equal(dec("5")))
			assert.True(t, f.stock("sugar").Equal(dec("100")))
			assert.Zero(t, f.store.MovementCount())
			assert.Zero(t, f.store.AuditCount())
		})
	}
}

func TestExecuteSingle_StockConCuatroDecimales(t *testing.T) {
	f := newFixture(t, nil)
	f.store.Seed(&entity.InventoryItem{ID: "salt", Name: "Sal", CurrentStock: dec("10.0005"), Unit: "kg",
		CostPerUnit: dec("1"), TenantID: "tenant-1", LocationID: "loc-1"})

	res, err := f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "salt", QuantityChange: dec("-1"), Type: entity.MovementTypeSale,
	}, actor, inventory.MovementOptions{})
	require.NoError(t, err)

	mov := res.Movements[0]
	assert.True(t, mov.QuantityAfter.Equal(mov.QuantityBefore.Add(mov.QuantityChanged)), "invariante del ledger")
	assert.True(t, f.stock("salt").Equal(dec("9.0005")))

	// el ítem se puede seguir moviendo
	_, err = f.svc.ExecuteSingleStockMovement(context.Background(), inventory.StockOperation{
		InventoryItemID: "salt", QuantityChange: dec("-2"), Type: entity.MovementTypeSale,
	}, actor, inventory.MovementOptions{})
	require.NoError(t, err)
	assert.True(t, f.stock("salt").Equal(dec("7.0005")))
}

func TestExecuteBulk_MismoItemEncadenaElEstado(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.ExecuteBulkStockMovements(context.Background(), []inventory.StockOperation{
		{InventoryItemID: "flour", QuantityChange: dec("-3"), Type: entity.MovementTypeSale},
		{InventoryItemID: "milk", QuantityChange: dec("-1"), Type: entity.MovementTypeWaste},
		{InventoryItemID: "flour", QuantityChange: dec("-4"), Type: entity.MovementTypeSale},
	}, actor, inventory.MovementOptions{})
	require.NoError(t, err)
	require.Len(t, res.Movements, 3)

	first, third := res.Movements[0], res.Movements[2]
	assert.True(t, first.QuantityAfter.Equal(dec("7")))
	assert.True(t, third.QuantityBefore.Equal(dec("7")))
	assert.True(t, third.QuantityAfter.Equal(dec("3")))
	for _, m := range res.Movements {
		assert.Equal(t, res.TransactionID, m.TransactionID, "un solo transactionId por lote")
	}
	assert.True(t, f.stock("flour").Equal(dec("3")))
	assert.Equal(t, 3, f.store.AuditCount())
}

func TestExecuteBulk_MarcaDeTiempoDelAlmacen(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.ExecuteBulkStockMovements(ctx, []inventory.StockOperation{
		{InventoryItemID: "flour", QuantityChange: dec("-1"), Type: entity.MovementTypeSale},
		{InventoryItemID: "milk", QuantityChange: dec("-1"), Type: entity.MovementTypeSale},
	}, actor, inventory.MovementOptions{})
	require.NoError(t, err)

	ts := res.Movements[0].Timestamp
	require.False(t, ts.IsZero())
	assert.Equal(t, ts, res.Movements[1].Timestamp, "una marca por transacción")
	assert.Equal(t, ts, f.store.Item("flour").LastUpdated)

	logs, err := f.svc.GetTransactionAuditLog(ctx, res.TransactionID)
	require.NoError(t, err)
	for _, l := range logs {
		assert.Equal(t, ts, l.Timestamp)
	}
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, ts, f.publisher.events[0].OccurredAt)
}

func TestExecuteBulk_HaltOnWarnings(t *testing.T) {
	f := newFixture(t, nil)
	ops := []inventory.StockOperation{
		{InventoryItemID: "flour", QuantityChange: dec("-9"), Type: entity.MovementTypeSale}, // queda bajo el mínimo
	}

	res, err := f.svc.ExecuteBulkStockMovements(context.Background(), ops, actor, inventory.MovementOptions{HaltOnWarnings: true})
	require.ErrorIs(t, err, domain.ErrWarningsNotAllowed)
	assert.NotEmpty(t, res.Warnings)
	assert.True(t, f.stock("flour").Equal(dec("10")))

	res, err = f.svc.ExecuteBulkStockMovements(context.Background(), ops, actor, inventory.MovementOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings, "por defecto las advertencias no bloquean")
	assert.True(t, f.stock("flour").Equal(dec("1")))
}

func TestExecuteBulk_LimiteDeOperaciones(t *testing.T) {
	f := newFixture(t, nil)

	ops := make([]inventory.StockOperation, 11)
	for i := range ops {
		ops[i] = inventory.StockOperation{InventoryItemID: "sugar", QuantityChange: dec("-1"), Type: entity.MovementTypeSale}
	}
	_, err := f.svc.ExecuteBulkStockMovements(context.Background(), ops, actor, inventory.MovementOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.ExecuteBulkStockMovements(context.Background(), nil, actor, inventory.MovementOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExecuteBulk_FalloDeAuditoriaNoAborta(t *testing.T) {
	f := newFixture(t, failingAudit{})

	res, err := f.svc.ExecuteBulkStockMovements(context.Background(), []inventory.StockOperation{
		{InventoryItemID: "sugar", QuantityChange: dec("-1"), Type: entity.MovementTypeSale},
	}, actor, inventory.MovementOptions{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, f.stock("sugar").Equal(dec("99")))
	assert.Equal(t, 1, f.store.MovementCount())
	assert.Equal(t, 1, f.metrics.auditFailures)
}

func TestExecuteBulk_FalloAlPublicarNoAborta(t *testing.T) {
	f := newFixture(t, nil)
	f.publisher.err = errors.New("broker down")

	res, err := f.svc.ExecuteBulkStockMovements(context.Background(), []inventory.StockOperation{
		{InventoryItemID: "sugar", QuantityChange: dec("-1"), Type: entity.MovementTypeSale},
	}, actor, inventory.MovementOptions{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, f.metrics.publishFails)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

func TestGetRecentStockMovements_MasRecientesPrimero(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for _, q := range []string{"-1", "-2", "-3"} {
		_, err := f.svc.ExecuteSingleStockMovement(ctx, inventory.StockOperation{
			InventoryItemID: "sugar", QuantityChange: dec(q), Type: entity.MovementTypeSale,
		}, actor, inventory.MovementOptions{})
		require.NoError(t, err)
	}

	movs, err := f.svc.GetRecentStockMovements(ctx, "sugar", 2)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.True(t, movs[0].QuantityChanged.Equal(dec("-3")))
	assert.True(t, movs[1].QuantityChanged.Equal(dec("-2")))

	_, err = f.svc.GetRecentStockMovements(ctx, "", 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
