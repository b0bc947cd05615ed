package entity

import "time"

// AuditTargetType objeto sobre el que actúa una entrada de auditoría.
type AuditTargetType string

const (
	AuditTargetInventory     AuditTargetType = "inventory"
	AuditTargetStockMovement AuditTargetType = "stock_movement"
	AuditTargetTransaction   AuditTargetType = "transaction"
)

// Acciones registradas por el ledger.
const (
	AuditActionStockMovement      = "stock_movement"
	AuditActionReverseTransaction = "reverse_transaction"
)

// AuditLog registro append-only de quién cambió qué, desde qué valor y hacia cuál.
// Es un canal lateral: no se usa para reconstruir stock.
type AuditLog struct {
	ID            string
	TransactionID string
	Action        string
	TargetType    AuditTargetType
	TargetID      string
	BeforeData    map[string]any
	AfterData     map[string]any
	UserID        string
	TenantID      string
	LocationID    string
	Timestamp     time.Time
}
