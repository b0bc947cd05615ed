package inventory

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const instrumentationName = "github.com/jhoicas/stock-ledger/internal/application/inventory"

// Nombres de operación para métricas, trazas y eventos.
const (
	OperationSingle    = "single_movement"
	OperationBulk      = "bulk_movement"
	OperationPOSOrder  = "pos_order"
	OperationReversal  = "reversal"
	OperationReconcile = "reconciliation"
)

// LedgerConfig parámetros del servicio.
type LedgerConfig struct {
	MaxBulkOperations    int // 0 = sin límite
	RecentMovementsLimit int
}

// LedgerService capa de transacciones: traduce resultados de la capa de cálculo en cambios
// atómicos y auditados del almacén. Es stateless; todas las dependencias se inyectan.
type LedgerService struct {
	txRunner  TxRunner
	itemRepo  repository.InventoryItemRepository // lecturas fuera de transacción
	movRepo   repository.StockMovementRepository // lecturas fuera de transacción
	auditRepo repository.AuditLogRepository
	publisher EventPublisher
	metrics   Metrics
	log       *logger.Logger
	cfg       LedgerConfig
	tracer    trace.Tracer
}

// NewLedgerService construye el servicio. publisher y metrics pueden ser nil (no-op).
func NewLedgerService(
	txRunner TxRunner,
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
	auditRepo repository.AuditLogRepository,
	publisher EventPublisher,
	metrics Metrics,
	log *logger.Logger,
	cfg LedgerConfig,
) *LedgerService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.RecentMovementsLimit <= 0 {
		cfg.RecentMovementsLimit = 50
	}
	return &LedgerService{
		txRunner:  txRunner,
		itemRepo:  itemRepo,
		movRepo:   movRepo,
		auditRepo: auditRepo,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
		tracer:    otel.Tracer(instrumentationName),
	}
}

// GetTransactionAuditLog devuelve las entradas de auditoría de una transacción, más antiguas primero.
func (s *LedgerService) GetTransactionAuditLog(ctx context.Context, transactionID string) ([]*entity.AuditLog, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.GetTransactionAuditLog",
		trace.WithAttributes(attribute.String("ledger.transaction_id", transactionID)))
	defer span.End()

	if transactionID == "" {
		return nil, invalidInput("transaction id is required")
	}
	logs, err := s.auditRepo.ListByTransaction(ctx, transactionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return logs, nil
}

// GetRecentStockMovements devuelve los últimos movimientos de un ítem, más recientes primero.
// limit <= 0 usa el límite configurado.
func (s *LedgerService) GetRecentStockMovements(ctx context.Context, itemID string, limit int) ([]*entity.StockMovement, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.GetRecentStockMovements",
		trace.WithAttributes(attribute.String("ledger.item_id", itemID), attribute.Int("ledger.limit", limit)))
	defer span.End()

	if itemID == "" {
		return nil, invalidInput("inventory item id is required")
	}
	if limit <= 0 {
		limit = s.cfg.RecentMovementsLimit
	}
	movs, err := s.movRepo.ListByItem(ctx, itemID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return movs, nil
}
