package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Integración contra PostgreSQL real: STOCK_LEDGER_TEST_DATABASE_URL=postgres://...
// ──────────────────────────────────────────────────────────────────────────────

func setup(t *testing.T) (context.Context, *postgres.TxRunner, *postgres.InventoryItemRepo, *postgres.StockMovementRepo) {
	t.Helper()
	url := os.Getenv("STOCK_LEDGER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("STOCK_LEDGER_TEST_DATABASE_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))

	return ctx, postgres.NewTxRunner(pool), postgres.NewInventoryItemRepository(pool), postgres.NewStockMovementRepository(pool)
}

func TestTxRunner_RollbackNoDejaEscrituras(t *testing.T) {
	ctx, runner, items, movements := setup(t)

	id := uuid.New().String()
	require.NoError(t, items.Insert(ctx, &entity.InventoryItem{
		ID: id, Name: "Harina", CurrentStock: decimal.NewFromInt(10), Unit: "kg",
		CostPerUnit: decimal.NewFromInt(2), TenantID: "t1", LocationID: "l1",
	}))

	boom := errors.New("boom")
	err := runner.Run(ctx, func(itemRepo repository.InventoryItemRepository, movRepo repository.StockMovementRepository) error {
		it, err := itemRepo.GetForUpdate(ctx, id)
		require.NoError(t, err)
		it.CurrentStock = decimal.NewFromInt(4)
		require.NoError(t, itemRepo.UpdateStock(ctx, it))
		require.NoError(t, movRepo.Create(ctx, &entity.StockMovement{
			InventoryItemID: id, InventoryItemName: "Harina", Type: entity.MovementTypeSale,
			QuantityBefore: decimal.NewFromInt(10), QuantityChanged: decimal.NewFromInt(-6), QuantityAfter: decimal.NewFromInt(4),
			TransactionID: "tx-" + id, UserID: "u1", TenantID: "t1", LocationID: "l1",
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := items.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(10)), "el rollback debe dejar el stock intacto")

	list, err := movements.ListByTransaction(ctx, "tx-"+id)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInventoryItemRepo_GetNoExiste(t *testing.T) {
	ctx, _, items, _ := setup(t)
	_, err := items.Get(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockMovementRepo_CuatroDecimalesYHoraDelServidor(t *testing.T) {
	ctx, runner, items, movements := setup(t)

	id := uuid.New().String()
	require.NoError(t, items.Insert(ctx, &entity.InventoryItem{
		ID: id, Name: "Sal", CurrentStock: decimal.RequireFromString("10.0005"), Unit: "kg",
		CostPerUnit: decimal.NewFromInt(1), TenantID: "t1", LocationID: "l1",
	}))

	txID := "tx-" + id
	mov := &entity.StockMovement{
		InventoryItemID: id, InventoryItemName: "Sal", Type: entity.MovementTypeSale,
		QuantityBefore:  decimal.RequireFromString("10.0005"),
		QuantityChanged: decimal.NewFromInt(-1),
		QuantityAfter:   decimal.RequireFromString("9.0005"),
		TransactionID:   txID, UserID: "u1", TenantID: "t1", LocationID: "l1",
	}
	err := runner.Run(ctx, func(_ repository.InventoryItemRepository, movRepo repository.StockMovementRepository) error {
		return movRepo.Create(ctx, mov)
	})
	require.NoError(t, err, "el CHECK de balance acepta stock con cuatro decimales")
	assert.False(t, mov.Timestamp.IsZero(), "created_at lo asigna el servidor")

	list, err := movements.ListByTransaction(ctx, txID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Timestamp.Equal(mov.Timestamp))
}
