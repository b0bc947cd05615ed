// Package kafka publica los eventos post-commit del ledger en un tópico de Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// EventTypeStockMoved valor del header ce-type.
const EventTypeStockMoved = "inventory.stock.moved"

// MessageWriter lo que el publicador necesita de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implementa inventory.EventPublisher.
type Publisher struct {
	writer MessageWriter
	topic  string
}

var _ inventory.EventPublisher = (*Publisher)(nil)

// NewPublisher crea el writer síncrono del tópico configurado.
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return NewPublisherWithWriter(w, cfg.Topic)
}

// NewPublisherWithWriter permite inyectar el writer (tests).
func NewPublisherWithWriter(w MessageWriter, topic string) *Publisher {
	return &Publisher{writer: w, topic: topic}
}

type movementMessage struct {
	ID                string           `json:"id"`
	InventoryItemID   string           `json:"inventoryItemId"`
	InventoryItemName string           `json:"inventoryItemName"`
	Type              string           `json:"type"`
	QuantityBefore    decimal.Decimal  `json:"quantityBefore"`
	QuantityChanged   decimal.Decimal  `json:"quantityChanged"`
	QuantityAfter     decimal.Decimal  `json:"quantityAfter"`
	UnitCost          *decimal.Decimal `json:"unitCost,omitempty"`
	TotalCost         *decimal.Decimal `json:"totalCost,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	ReferenceID       string           `json:"referenceId,omitempty"`
	Timestamp         time.Time        `json:"timestamp"`
}

type stockMovedMessage struct {
	TransactionID string            `json:"transactionId"`
	Operation     string            `json:"operation"`
	TenantID      string            `json:"tenantId"`
	LocationID    string            `json:"locationId"`
	UserID        string            `json:"userId"`
	Movements     []movementMessage `json:"movements"`
	OccurredAt    time.Time         `json:"occurredAt"`
}

func toMessage(e inventory.StockMovedEvent) stockMovedMessage {
	out := stockMovedMessage{
		TransactionID: e.TransactionID,
		Operation:     e.Operation,
		TenantID:      e.TenantID,
		LocationID:    e.LocationID,
		UserID:        e.UserID,
		OccurredAt:    e.OccurredAt,
		Movements:     make([]movementMessage, 0, len(e.Movements)),
	}
	for _, m := range e.Movements {
		out.Movements = append(out.Movements, fromMovement(m))
	}
	return out
}

func fromMovement(m *entity.StockMovement) movementMessage {
	return movementMessage{
		ID:                m.ID,
		InventoryItemID:   m.InventoryItemID,
		InventoryItemName: m.InventoryItemName,
		Type:              string(m.Type),
		QuantityBefore:    m.QuantityBefore,
		QuantityChanged:   m.QuantityChanged,
		QuantityAfter:     m.QuantityAfter,
		UnitCost:          m.UnitCost,
		TotalCost:         m.TotalCost,
		Reason:            m.Reason,
		ReferenceID:       m.ReferenceID,
		Timestamp:         m.Timestamp,
	}
}

// PublishStockMoved escribe un mensaje por transacción, con clave = transactionId.
// El contexto de traza viaja en los headers (W3C trace context).
func (p *Publisher) PublishStockMoved(ctx context.Context, e inventory.StockMovedEvent) error {
	data, err := json.Marshal(toMessage(e))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.TransactionID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "ce-type", Value: []byte(EventTypeStockMoved)},
			{Key: "ce-id", Value: []byte(e.TransactionID)},
			{Key: "ce-time", Value: []byte(e.OccurredAt.Format(time.RFC3339))},
			{Key: "ce-tenantid", Value: []byte(e.TenantID)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: e.OccurredAt,
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to topic %s: %w", p.topic, err)
	}
	return nil
}

// Close cierra el writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
