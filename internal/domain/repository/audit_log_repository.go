package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AuditLogRepository canal lateral append-only de auditoría.
type AuditLogRepository interface {
	CreateMany(ctx context.Context, logs []*entity.AuditLog) error
	// ListByTransaction devuelve las entradas de una transacción, más antiguas primero.
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.AuditLog, error)
}
