package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.AuditLogRepository      = (*AuditLogRepo)(nil)
)

// scope ata las operaciones a la sesión de una transacción (nil fuera de transacción).
type scope struct {
	session mongo.Session
}

func (s scope) ctx(ctx context.Context) context.Context {
	if s.session == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, s.session)
}

func mapError(op string, err error) error {
	var se mongo.ServerError
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	case errors.As(err, &se) && se.HasErrorLabel("TransientTransactionError"):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ítems
// ──────────────────────────────────────────────────────────────────────────────

// InventoryItemRepo colección inventory.
type InventoryItemRepo struct {
	coll *mongo.Collection
	scope
}

// NewInventoryItemRepository repositorio fuera de transacción.
func NewInventoryItemRepository(db *mongo.Database) *InventoryItemRepo {
	return &InventoryItemRepo{coll: db.Collection(CollectionInventory)}
}

func (r *InventoryItemRepo) Get(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var doc itemDocument
	if err := r.coll.FindOne(r.ctx(ctx), bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError("get inventory item", err)
	}
	return doc.toEntity(), nil
}

// GetForUpdate escribe un lockToken para tomar el lock de escritura del documento dentro de la
// transacción; una transacción concurrente sobre el mismo ítem falla con write conflict.
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var doc itemDocument
	err := r.coll.FindOneAndUpdate(r.ctx(ctx),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lockToken": uuid.New().String()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapError("get inventory item for update", err)
	}
	return doc.toEntity(), nil
}

func (r *InventoryItemRepo) UpdateStock(ctx context.Context, item *entity.InventoryItem) error {
	res, err := r.coll.UpdateOne(r.ctx(ctx),
		bson.M{"_id": item.ID},
		bson.M{
			"$set": bson.M{
				"currentStock": toDecimal128(item.CurrentStock),
				"costPerUnit":  toDecimal128(item.CostPerUnit),
			},
			"$currentDate": bson.M{"lastUpdated": true},
		},
	)
	if err != nil {
		return mapError("update stock", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update stock %s: %w", item.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *InventoryItemRepo) ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.InventoryItem, error) {
	cur, err := r.coll.Find(r.ctx(ctx),
		bson.M{"tenantId": tenantID, "locationId": locationID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, mapError("list inventory items", err)
	}
	var docs []itemDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode inventory items: %w", err)
	}
	out := make([]*entity.InventoryItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

// Insert crea un ítem (aprovisionamiento y tests de integración).
func (r *InventoryItemRepo) Insert(ctx context.Context, item *entity.InventoryItem) error {
	doc := newItemDocument(item)
	if doc.LastUpdated.IsZero() {
		doc.LastUpdated = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(r.ctx(ctx), doc); err != nil {
		return mapError("insert inventory item", err)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

// StockMovementRepo colección stockMovements (append-only).
type StockMovementRepo struct {
	coll *mongo.Collection
	scope
}

// NewStockMovementRepository repositorio fuera de transacción.
func NewStockMovementRepository(db *mongo.Database) *StockMovementRepo {
	return &StockMovementRepo{coll: db.Collection(CollectionStockMovements)}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(r.ctx(ctx), newMovementDocument(m)); err != nil {
		return mapError("create stock movement", err)
	}
	return nil
}

func (r *StockMovementRepo) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]*entity.StockMovement, error) {
	cur, err := r.coll.Find(r.ctx(ctx), filter, opts)
	if err != nil {
		return nil, mapError(op, err)
	}
	var docs []movementDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock movements: %w", err)
	}
	out := make([]*entity.StockMovement, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

func (r *StockMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error) {
	return r.find(ctx, "list movements by transaction",
		bson.M{"transactionId": transactionID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
}

func (r *StockMovementRepo) ListByItem(ctx context.Context, itemID string, limit int) ([]*entity.StockMovement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, "list movements by item", bson.M{"inventoryItemId": itemID}, opts)
}

func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error) {
	return r.find(ctx, "list movements by reference",
		bson.M{"referenceId": referenceID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
}

func (r *StockMovementRepo) SalesUsageSince(ctx context.Context, tenantID, locationID string, since time.Time) (map[string]decimal.Decimal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"tenantId":   tenantID,
			"locationId": locationID,
			"type":       string(entity.MovementTypeSale),
			"timestamp":  bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$inventoryItemId",
			"total": bson.M{"$sum": bson.M{"$abs": "$quantityChanged"}},
		}}},
	}
	cur, err := r.coll.Aggregate(r.ctx(ctx), pipeline)
	if err != nil {
		return nil, mapError("sales usage", err)
	}
	var rows []struct {
		ID    string               `bson:"_id"`
		Total primitive.Decimal128 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode sales usage: %w", err)
	}
	usage := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		usage[row.ID] = fromDecimal128(row.Total)
	}
	return usage, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría
// ──────────────────────────────────────────────────────────────────────────────

// AuditLogRepo colección auditLogs. Se escribe fuera de la transacción del ledger.
type AuditLogRepo struct {
	coll *mongo.Collection
}

// NewAuditLogRepository construye el repositorio de auditoría.
func NewAuditLogRepository(db *mongo.Database) *AuditLogRepo {
	return &AuditLogRepo{coll: db.Collection(CollectionAuditLogs)}
}

func (r *AuditLogRepo) CreateMany(ctx context.Context, logs []*entity.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(logs))
	for _, l := range logs {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		if l.Timestamp.IsZero() {
			l.Timestamp = now
		}
		docs = append(docs, newAuditDocument(l))
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return mapError("create audit logs", err)
	}
	return nil
}

func (r *AuditLogRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.AuditLog, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"transactionId": transactionID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, mapError("list audit logs", err)
	}
	var docs []auditDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit logs: %w", err)
	}
	out := make([]*entity.AuditLog, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}
