package mongodb

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type itemDocument struct {
	ID           string                `bson:"_id"`
	Name         string                `bson:"name"`
	CurrentStock primitive.Decimal128  `bson:"currentStock"`
	Unit         string                `bson:"unit"`
	CostPerUnit  primitive.Decimal128  `bson:"costPerUnit"`
	MinStock     primitive.Decimal128  `bson:"minStock"`
	MaxStock     *primitive.Decimal128 `bson:"maxStock,omitempty"`
	LastUpdated  time.Time             `bson:"lastUpdated"`
	TenantID     string                `bson:"tenantId"`
	LocationID   string                `bson:"locationId"`
	LockToken    string                `bson:"lockToken,omitempty"`
}

type movementDocument struct {
	ID                string                `bson:"_id"`
	Seq               primitive.ObjectID    `bson:"seq"`
	InventoryItemID   string                `bson:"inventoryItemId"`
	InventoryItemName string                `bson:"inventoryItemName"`
	Type              string                `bson:"type"`
	QuantityBefore    primitive.Decimal128  `bson:"quantityBefore"`
	QuantityChanged   primitive.Decimal128  `bson:"quantityChanged"`
	QuantityAfter     primitive.Decimal128  `bson:"quantityAfter"`
	UnitCost          *primitive.Decimal128 `bson:"unitCost,omitempty"`
	TotalCost         *primitive.Decimal128 `bson:"totalCost,omitempty"`
	Reason            string                `bson:"reason"`
	ReferenceID       string                `bson:"referenceId,omitempty"`
	TransactionID     string                `bson:"transactionId"`
	Timestamp         time.Time             `bson:"timestamp"`
	UserID            string                `bson:"userId"`
	TenantID          string                `bson:"tenantId"`
	LocationID        string                `bson:"locationId"`
}

type auditDocument struct {
	ID            string             `bson:"_id"`
	Seq           primitive.ObjectID `bson:"seq"`
	TransactionID string             `bson:"transactionId"`
	Action        string             `bson:"action"`
	TargetType    string             `bson:"targetType"`
	TargetID      string             `bson:"targetId"`
	BeforeData    bson.M             `bson:"beforeData,omitempty"`
	AfterData     bson.M             `bson:"afterData,omitempty"`
	UserID        string             `bson:"userId"`
	TenantID      string             `bson:"tenantId"`
	LocationID    string             `bson:"locationId"`
	Timestamp     time.Time          `bson:"timestamp"`
}

// toDecimal128 convierte sin pérdida: decimal.String nunca usa notación científica.
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func toDecimal128Ptr(d *decimal.Decimal) *primitive.Decimal128 {
	if d == nil {
		return nil
	}
	v := toDecimal128(*d)
	return &v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func fromDecimal128Ptr(v *primitive.Decimal128) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := fromDecimal128(*v)
	return &d
}

func newItemDocument(it *entity.InventoryItem) itemDocument {
	return itemDocument{
		ID:           it.ID,
		Name:         it.Name,
		CurrentStock: toDecimal128(it.CurrentStock),
		Unit:         it.Unit,
		CostPerUnit:  toDecimal128(it.CostPerUnit),
		MinStock:     toDecimal128(it.MinStock),
		MaxStock:     toDecimal128Ptr(it.MaxStock),
		LastUpdated:  it.LastUpdated,
		TenantID:     it.TenantID,
		LocationID:   it.LocationID,
	}
}

func (d itemDocument) toEntity() *entity.InventoryItem {
	return &entity.InventoryItem{
		ID:           d.ID,
		Name:         d.Name,
		CurrentStock: fromDecimal128(d.CurrentStock),
		Unit:         d.Unit,
		CostPerUnit:  fromDecimal128(d.CostPerUnit),
		MinStock:     fromDecimal128(d.MinStock),
		MaxStock:     fromDecimal128Ptr(d.MaxStock),
		LastUpdated:  d.LastUpdated,
		TenantID:     d.TenantID,
		LocationID:   d.LocationID,
	}
}

func newMovementDocument(m *entity.StockMovement) movementDocument {
	return movementDocument{
		ID:                m.ID,
		Seq:               primitive.NewObjectID(),
		InventoryItemID:   m.InventoryItemID,
		InventoryItemName: m.InventoryItemName,
		Type:              string(m.Type),
		QuantityBefore:    toDecimal128(m.QuantityBefore),
		QuantityChanged:   toDecimal128(m.QuantityChanged),
		QuantityAfter:     toDecimal128(m.QuantityAfter),
		UnitCost:          toDecimal128Ptr(m.UnitCost),
		TotalCost:         toDecimal128Ptr(m.TotalCost),
		Reason:            m.Reason,
		ReferenceID:       m.ReferenceID,
		TransactionID:     m.TransactionID,
		Timestamp:         m.Timestamp,
		UserID:            m.UserID,
		TenantID:          m.TenantID,
		LocationID:        m.LocationID,
	}
}

func (d movementDocument) toEntity() *entity.StockMovement {
	return &entity.StockMovement{
		ID:                d.ID,
		InventoryItemID:   d.InventoryItemID,
		InventoryItemName: d.InventoryItemName,
		Type:              entity.MovementType(d.Type),
		QuantityBefore:    fromDecimal128(d.QuantityBefore),
		QuantityChanged:   fromDecimal128(d.QuantityChanged),
		QuantityAfter:     fromDecimal128(d.QuantityAfter),
		UnitCost:          fromDecimal128Ptr(d.UnitCost),
		TotalCost:         fromDecimal128Ptr(d.TotalCost),
		Reason:            d.Reason,
		ReferenceID:       d.ReferenceID,
		TransactionID:     d.TransactionID,
		Timestamp:         d.Timestamp,
		UserID:            d.UserID,
		TenantID:          d.TenantID,
		LocationID:        d.LocationID,
	}
}

func newAuditDocument(l *entity.AuditLog) auditDocument {
	return auditDocument{
		ID:            l.ID,
		Seq:           primitive.NewObjectID(),
		TransactionID: l.TransactionID,
		Action:        l.Action,
		TargetType:    string(l.TargetType),
		TargetID:      l.TargetID,
		BeforeData:    bson.M(l.BeforeData),
		AfterData:     bson.M(l.AfterData),
		UserID:        l.UserID,
		TenantID:      l.TenantID,
		LocationID:    l.LocationID,
		Timestamp:     l.Timestamp,
	}
}

func (d auditDocument) toEntity() *entity.AuditLog {
	return &entity.AuditLog{
		ID:            d.ID,
		TransactionID: d.TransactionID,
		Action:        d.Action,
		TargetType:    entity.AuditTargetType(d.TargetType),
		TargetID:      d.TargetID,
		BeforeData:    map[string]any(d.BeforeData),
		AfterData:     map[string]any(d.AfterData),
		UserID:        d.UserID,
		TenantID:      d.TenantID,
		LocationID:    d.LocationID,
		Timestamp:     d.Timestamp,
	}
}

func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionInventory: {
			{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "locationId", Value: 1}, {Key: "name", Value: 1}}},
		},
		CollectionStockMovements: {
			{Keys: bson.D{{Key: "transactionId", Value: 1}, {Key: "seq", Value: 1}}},
			{Keys: bson.D{{Key: "inventoryItemId", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "referenceId", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{
				{Key: "tenantId", Value: 1}, {Key: "locationId", Value: 1},
				{Key: "type", Value: 1}, {Key: "timestamp", Value: 1},
			}},
		},
		CollectionAuditLogs: {
			{Keys: bson.D{{Key: "transactionId", Value: 1}, {Key: "seq", Value: 1}}},
		},
	}
}
