package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	ledgerkafka "github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() inventory.StockMovedEvent {
	cost := decimal.RequireFromString("2.5")
	return inventory.StockMovedEvent{
		TransactionID: "tx-1",
		Operation:     inventory.OperationSingle,
		TenantID:      "tenant-1",
		LocationID:    "loc-1",
		UserID:        "user-1",
		OccurredAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Movements: []*entity.StockMovement{{
			ID: "mov-1", InventoryItemID: "flour", Type: entity.MovementTypeSale,
			QuantityBefore:  decimal.RequireFromString("10"),
			QuantityChanged: decimal.RequireFromString("-0.125"),
			QuantityAfter:   decimal.RequireFromString("9.875"),
			UnitCost:        &cost,
		}},
	}
}

func TestPublishStockMoved_MensajeConClaveYDecimalesExactos(t *testing.T) {
	w := &captureWriter{}
	p := ledgerkafka.NewPublisherWithWriter(w, "inventory.stock.moved")

	require.NoError(t, p.PublishStockMoved(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "tx-1", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, ledgerkafka.EventTypeStockMoved, headers["ce-type"])
	assert.Equal(t, "tenant-1", headers["ce-tenantid"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "tx-1", body["transactionId"])
	movs := body["movements"].([]any)
	require.Len(t, movs, 1)
	first := movs[0].(map[string]any)
	assert.Equal(t, "-0.125", first["quantityChanged"], "los decimales viajan como string")
	assert.Equal(t, "sale", first["type"])
}

func TestPublishStockMoved_PropagaElError(t *testing.T) {
	w := &captureWriter{err: errors.New("leader not available")}
	p := ledgerkafka.NewPublisherWithWriter(w, "inventory.stock.moved")

	err := p.PublishStockMoved(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory.stock.moved")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
