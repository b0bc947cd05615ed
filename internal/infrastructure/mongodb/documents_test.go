package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestDecimal128_ConservaEscala(t *testing.T) {
	for _, s := range []string{"0", "12.5", "-3.125", "0.0001", "123456789.1234"} {
		d := decimal.RequireFromString(s)
		got := fromDecimal128(toDecimal128(d))
		assert.True(t, d.Equal(got), "valor %s", s)
	}
	assert.Nil(t, toDecimal128Ptr(nil))
	assert.Nil(t, fromDecimal128Ptr(nil))
}

func TestItemDocument_IdaYVuelta(t *testing.T) {
	max := decimal.NewFromInt(40)
	it := &entity.InventoryItem{
		ID: "item-1", Name: "Leche", CurrentStock: decimal.RequireFromString("10.5"),
		Unit: "l", CostPerUnit: decimal.RequireFromString("1.25"), MinStock: decimal.NewFromInt(2),
		MaxStock: &max, LastUpdated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		TenantID: "t1", LocationID: "l1",
	}
	got := newItemDocument(it).toEntity()
	require.NotNil(t, got.MaxStock)
	assert.True(t, got.MaxStock.Equal(max))
	assert.True(t, got.CurrentStock.Equal(it.CurrentStock))
	assert.Equal(t, it.TenantID, got.TenantID)
}

func TestMovementDocument_SeqCreciente(t *testing.T) {
	m := &entity.StockMovement{ID: "m1", Type: entity.MovementTypeSale, QuantityChanged: decimal.NewFromInt(-1)}
	a := newMovementDocument(m)
	b := newMovementDocument(m)
	assert.Less(t, a.Seq.Hex(), b.Seq.Hex(), "seq ordena los movimientos en orden de escritura")
	assert.Equal(t, entity.MovementTypeSale, a.toEntity().Type)
}
