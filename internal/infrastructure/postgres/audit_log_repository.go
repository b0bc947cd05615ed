package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo canal de auditoría sobre PostgreSQL. Se usa fuera de la transacción del ledger.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

const insertAudit = `
	INSERT INTO audit_logs (id, transaction_id, action, target_type, target_id, before_data, after_data,
		user_id, tenant_id, location_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// CreateMany inserta las entradas en un único batch.
func (r *AuditLogRepo) CreateMany(ctx context.Context, logs []*entity.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, l := range logs {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		if l.Timestamp.IsZero() {
			l.Timestamp = now
		}
		batch.Queue(insertAudit, l.ID, l.TransactionID, l.Action, string(l.TargetType), l.TargetID,
			l.BeforeData, l.AfterData, l.UserID, l.TenantID, l.LocationID, l.Timestamp)
	}
	res := r.q.SendBatch(ctx, batch)
	defer res.Close()
	for range logs {
		if _, err := res.Exec(); err != nil {
			return mapError("create audit log", err)
		}
	}
	return nil
}

// ListByTransaction devuelve las entradas de una transacción en orden de escritura.
func (r *AuditLogRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.AuditLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id, action, target_type, target_id, before_data, after_data,
			user_id, tenant_id, location_id, created_at
		FROM audit_logs WHERE transaction_id = $1 ORDER BY seq`, transactionID)
	if err != nil {
		return nil, mapError("list audit logs", err)
	}
	defer rows.Close()
	var list []*entity.AuditLog
	for rows.Next() {
		var l entity.AuditLog
		var target string
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.Action, &target, &l.TargetID,
			&l.BeforeData, &l.AfterData, &l.UserID, &l.TenantID, &l.LocationID, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		l.TargetType = entity.AuditTargetType(target)
		list = append(list, &l)
	}
	return list, rows.Err()
}
