package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Requests
// ──────────────────────────────────────────────────────────────────────────────

// StockOperationRequest un movimiento. Los decimales viajan como string JSON ("1.25").
type StockOperationRequest struct {
	InventoryItemID string           `json:"inventory_item_id" validate:"required,max=64"`
	QuantityChange  decimal.Decimal  `json:"quantity_change" validate:"nonzero_decimal"`
	Type            string           `json:"type" validate:"required,movement_type"`
	Unit            string           `json:"unit,omitempty" validate:"omitempty,max=16"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason          string           `json:"reason,omitempty" validate:"max=500"`
	ReferenceID     string           `json:"reference_id,omitempty" validate:"max=64"`
}

// ToOperation convierte al tipo de la capa de transacciones.
func (r StockOperationRequest) ToOperation() inventory.StockOperation {
	return inventory.StockOperation{
		InventoryItemID: r.InventoryItemID,
		QuantityChange:  r.QuantityChange,
		Type:            entity.MovementType(r.Type),
		Unit:            r.Unit,
		UnitCost:        r.UnitCost,
		Reason:          r.Reason,
		ReferenceID:     r.ReferenceID,
	}
}

// MovementOptionsRequest opciones comunes de movimientos.
type MovementOptionsRequest struct {
	SkipValidation bool `json:"skip_validation,omitempty"`
	HaltOnWarnings bool `json:"halt_on_warnings,omitempty"`
}

// ToOptions convierte a inventory.MovementOptions.
func (r MovementOptionsRequest) ToOptions() inventory.MovementOptions {
	return inventory.MovementOptions{SkipValidation: r.SkipValidation, HaltOnWarnings: r.HaltOnWarnings}
}

// SingleMovementRequest body para POST /api/inventory/movements.
type SingleMovementRequest struct {
	StockOperationRequest
	MovementOptionsRequest
	LocationID string `json:"location_id,omitempty"`
}

// BulkMovementRequest body para POST /api/inventory/movements/bulk.
type BulkMovementRequest struct {
	Operations []StockOperationRequest `json:"operations" validate:"required,min=1,dive"`
	MovementOptionsRequest
	LocationID string `json:"location_id,omitempty"`
}

// IngredientRequest ingrediente por unidad vendida.
type IngredientRequest struct {
	InventoryItemID string           `json:"inventory_item_id" validate:"required,max=64"`
	Quantity        decimal.Decimal  `json:"quantity" validate:"positive_decimal"`
	Unit            string           `json:"unit,omitempty" validate:"omitempty,max=16"`
	CostOverride    *decimal.Decimal `json:"cost_override,omitempty"`
}

// POSOrderItemRequest línea de la orden.
type POSOrderItemRequest struct {
	MenuItemID  string              `json:"menu_item_id" validate:"required,max=64"`
	Name        string              `json:"name,omitempty" validate:"max=200"`
	Quantity    decimal.Decimal     `json:"quantity" validate:"positive_decimal"`
	Ingredients []IngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
}

// POSOrderRequest body para POST /api/inventory/pos-orders (y /preview, donde OrderID es opcional).
type POSOrderRequest struct {
	OrderID    string                `json:"order_id" validate:"max=64"`
	Items      []POSOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	LocationID string                `json:"location_id,omitempty"`
}

// ToItems convierte las líneas al tipo de la capa de transacciones.
func (r POSOrderRequest) ToItems() []inventory.POSOrderItem {
	out := make([]inventory.POSOrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		ings := make([]domaininv.IngredientDeduction, 0, len(it.Ingredients))
		for _, ing := range it.Ingredients {
			ings = append(ings, domaininv.IngredientDeduction{
				InventoryItemID: ing.InventoryItemID,
				Quantity:        ing.Quantity,
				Unit:            ing.Unit,
				CostOverride:    ing.CostOverride,
			})
		}
		out = append(out, inventory.POSOrderItem{
			MenuItemID:  it.MenuItemID,
			Name:        it.Name,
			Quantity:    it.Quantity,
			Ingredients: ings,
		})
	}
	return out
}

// ReverseTransactionRequest body opcional de POST /api/inventory/transactions/{id}/reverse.
type ReverseTransactionRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// ReconcileRequest body para POST /api/inventory/items/{id}/reconcile.
type ReconcileRequest struct {
	PhysicalCount decimal.Decimal `json:"physical_count" validate:"nonnegative_decimal"`
	Reason        string          `json:"reason,omitempty" validate:"max=500"`
	LocationID    string          `json:"location_id,omitempty"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Responses
// ──────────────────────────────────────────────────────────────────────────────

// MovementResponse entrada del ledger.
type MovementResponse struct {
	ID                string           `json:"id"`
	InventoryItemID   string           `json:"inventory_item_id"`
	InventoryItemName string           `json:"inventory_item_name"`
	Type              string           `json:"type"`
	QuantityBefore    decimal.Decimal  `json:"quantity_before"`
	QuantityChanged   decimal.Decimal  `json:"quantity_changed"`
	QuantityAfter     decimal.Decimal  `json:"quantity_after"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost         *decimal.Decimal `json:"total_cost,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	ReferenceID       string           `json:"reference_id,omitempty"`
	TransactionID     string           `json:"transaction_id"`
	Timestamp         time.Time        `json:"timestamp"`
	UserID            string           `json:"user_id"`
}

// NewMovementResponse mapea un movimiento.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
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
		TransactionID:     m.TransactionID,
		Timestamp:         m.Timestamp,
		UserID:            m.UserID,
	}
}

// NewMovementList mapea una lista (nunca nil en JSON).
func NewMovementList(movs []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, NewMovementResponse(m))
	}
	return out
}

// TransactionResultResponse resultado de una operación del ledger.
type TransactionResultResponse struct {
	Success       bool               `json:"success"`
	TransactionID string             `json:"transaction_id,omitempty"`
	Movements     []MovementResponse `json:"movements"`
	Warnings      []string           `json:"warnings,omitempty"`
	Errors        []string           `json:"errors,omitempty"`
}

// NewTransactionResultResponse mapea el resultado.
func NewTransactionResultResponse(r *inventory.TransactionResult) TransactionResultResponse {
	return TransactionResultResponse{
		Success:       r.Success,
		TransactionID: r.TransactionID,
		Movements:     NewMovementList(r.Movements),
		Warnings:      r.Warnings,
		Errors:        r.Errors,
	}
}

// AuditLogResponse entrada de auditoría.
type AuditLogResponse struct {
	ID            string         `json:"id"`
	TransactionID string         `json:"transaction_id"`
	Action        string         `json:"action"`
	TargetType    string         `json:"target_type"`
	TargetID      string         `json:"target_id"`
	BeforeData    map[string]any `json:"before_data,omitempty"`
	AfterData     map[string]any `json:"after_data,omitempty"`
	UserID        string         `json:"user_id"`
	Timestamp     time.Time      `json:"timestamp"`
}

// NewAuditLogList mapea las entradas.
func NewAuditLogList(logs []*entity.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, AuditLogResponse{
			ID:            l.ID,
			TransactionID: l.TransactionID,
			Action:        l.Action,
			TargetType:    string(l.TargetType),
			TargetID:      l.TargetID,
			BeforeData:    l.BeforeData,
			AfterData:     l.AfterData,
			UserID:        l.UserID,
			Timestamp:     l.Timestamp,
		})
	}
	return out
}

// DeductionLineResponse línea de la vista previa de una orden.
type DeductionLineResponse struct {
	InventoryItemID string           `json:"inventory_item_id"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Success         bool             `json:"success"`
	NewStock        *decimal.Decimal `json:"new_stock,omitempty"`
	TotalCost       *decimal.Decimal `json:"total_cost,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
	Errors          []string         `json:"errors,omitempty"`
}

// POSPreviewResponse vista previa de una orden POS.
type POSPreviewResponse struct {
	Results    []DeductionLineResponse `json:"results"`
	TotalCost  decimal.Decimal         `json:"total_cost"`
	CanProceed bool                    `json:"can_proceed"`
}

// NewPOSPreviewResponse mapea el reporte del descuento masivo.
func NewPOSPreviewResponse(r *domaininv.BulkDeductionReport) POSPreviewResponse {
	out := POSPreviewResponse{
		Results:    make([]DeductionLineResponse, 0, len(r.Results)),
		TotalCost:  r.TotalCost,
		CanProceed: r.CanProceed,
	}
	for _, line := range r.Results {
		l := DeductionLineResponse{
			InventoryItemID: line.InventoryItemID,
			Quantity:        line.Quantity,
			Success:         !line.Failed(),
		}
		if line.Error != "" {
			l.Errors = []string{line.Error}
		}
		if line.Result != nil {
			l.Warnings = line.Result.Warnings
			l.Errors = append(l.Errors, line.Result.Errors...)
			if line.Result.Success {
				stock := line.Result.NewStock
				l.NewStock = &stock
				l.TotalCost = line.Result.TotalCost
			}
		}
		out.Results = append(out.Results, l)
	}
	return out
}

// ReorderRecommendationResponse recomendación de reposición de un ítem.
type ReorderRecommendationResponse struct {
	InventoryItemID string           `json:"inventory_item_id"`
	Name            string           `json:"name"`
	Unit            string           `json:"unit"`
	CurrentStock    decimal.Decimal  `json:"current_stock"`
	MinStock        decimal.Decimal  `json:"min_stock"`
	MaxStock        *decimal.Decimal `json:"max_stock,omitempty"`
	Priority        string           `json:"priority"` // urgent | soon | normal | none
	Reason          string           `json:"reason"`
	SuggestedOrder  decimal.Decimal  `json:"suggested_order"`
	DailyUsage      *decimal.Decimal `json:"daily_usage,omitempty"`
	DaysRemaining   *int             `json:"days_remaining,omitempty"`
}

// NewReorderList mapea las recomendaciones conservando el orden.
func NewReorderList(recs []domaininv.ReorderRecommendation) []ReorderRecommendationResponse {
	out := make([]ReorderRecommendationResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, ReorderRecommendationResponse{
			InventoryItemID: r.InventoryItemID,
			Name:            r.Name,
			Unit:            r.Unit,
			CurrentStock:    r.CurrentStock,
			MinStock:        r.MinStock,
			MaxStock:        r.MaxStock,
			Priority:        string(r.Priority),
			Reason:          r.Reason,
			SuggestedOrder:  r.SuggestedOrder,
			DailyUsage:      r.DailyUsage,
			DaysRemaining:   r.DaysRemaining,
		})
	}
	return out
}
