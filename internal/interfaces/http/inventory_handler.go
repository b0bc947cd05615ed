package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP del ledger de inventario (protegido).
type InventoryHandler struct {
	ledger  *inventory.LedgerService
	reorder *inventory.ReorderUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerService, reorder *inventory.ReorderUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, reorder: reorder}
}

// bind decodifica y valida el body. Si devuelve false la respuesta de error ya está escrita.
func bind(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badBody(c)
	}
	if err := Validator().Struct(out); err != nil {
		return false, invalidRequest(c, err)
	}
	return true, nil
}

// ExecuteMovement godoc
// @Summary      Registrar un movimiento de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SingleMovementRequest  true  "inventory_item_id, quantity_change (con signo), type, unit, unit_cost"
// @Success      201   {object}  dto.TransactionResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) ExecuteMovement(c *fiber.Ctx) error {
	var in dto.SingleMovementRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	res, err := h.ledger.ExecuteSingleStockMovement(c.UserContext(), in.ToOperation(), actorFrom(c, in.LocationID), in.ToOptions())
	return writeResult(c, res, err)
}

// ExecuteBulk godoc
// @Summary      Registrar movimientos en lote (todo o nada)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkMovementRequest  true  "operations, skip_validation, halt_on_warnings"
// @Success      201   {object}  dto.TransactionResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/bulk [post]
func (h *InventoryHandler) ExecuteBulk(c *fiber.Ctx) error {
	var in dto.BulkMovementRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	ops := make([]inventory.StockOperation, 0, len(in.Operations))
	for _, op := range in.Operations {
		ops = append(ops, op.ToOperation())
	}
	res, err := h.ledger.ExecuteBulkStockMovements(c.UserContext(), ops, actorFrom(c, in.LocationID), in.ToOptions())
	return writeResult(c, res, err)
}

// ProcessPOSOrder godoc
// @Summary      Descontar los ingredientes de una orden POS
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.POSOrderRequest  true  "order_id e items con sus ingredientes por unidad"
// @Success      201   {object}  dto.TransactionResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/pos-orders [post]
func (h *InventoryHandler) ProcessPOSOrder(c *fiber.Ctx) error {
	var in dto.POSOrderRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	res, err := h.ledger.ProcessPOSOrder(c.UserContext(), in.OrderID, in.ToItems(), actorFrom(c, in.LocationID))
	return writeResult(c, res, err)
}

// PreviewPOSOrder godoc
// @Summary      Vista previa del descuento de una orden POS (sin escribir)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.POSOrderRequest  true  "items con sus ingredientes por unidad"
// @Success      200   {object}  dto.POSPreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/pos-orders/preview [post]
func (h *InventoryHandler) PreviewPOSOrder(c *fiber.Ctx) error {
	var in dto.POSOrderRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	report, err := h.ledger.PreviewPOSOrder(c.UserContext(), in.ToItems(), actorFrom(c, in.LocationID))
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(dto.NewPOSPreviewResponse(report))
}

// ReverseTransaction godoc
// @Summary      Revertir una transacción (admin, manager)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true   "ID de la transacción original"
// @Param        body  body  dto.ReverseTransactionRequest  false  "motivo"
// @Success      201   {object}  dto.TransactionResultResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions/{id}/reverse [post]
func (h *InventoryHandler) ReverseTransaction(c *fiber.Ctx) error {
	var in dto.ReverseTransactionRequest
	if len(c.Body()) > 0 {
		if ok, err := bind(c, &in); !ok {
			return err
		}
	}
	actor := inventory.Actor{UserID: GetUserID(c), TenantID: GetTenantID(c)}
	res, err := h.ledger.ReverseTransaction(c.UserContext(), c.Params("id"), actor, in.Reason)
	return writeResult(c, res, err)
}

// GetTransactionAudit godoc
// @Summary      Auditoría de una transacción
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {array}   dto.AuditLogResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions/{id}/audit [get]
func (h *InventoryHandler) GetTransactionAudit(c *fiber.Ctx) error {
	logs, err := h.ledger.GetTransactionAuditLog(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err, nil)
	}
	tenantID := GetTenantID(c)
	visible := make([]*entity.AuditLog, 0, len(logs))
	for _, l := range logs {
		if l.TenantID == tenantID {
			visible = append(visible, l)
		}
	}
	if len(visible) == 0 {
		return writeError(c, domain.ErrNotFound, nil)
	}
	return c.JSON(dto.NewAuditLogList(visible))
}

// GetItemMovements godoc
// @Summary      Últimos movimientos de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del ítem"
// @Param        limit  query  int     false  "máximo de movimientos (por defecto el configurado)"
// @Success      200  {array}   dto.MovementResponse
// @Router       /api/inventory/items/{id}/movements [get]
func (h *InventoryHandler) GetItemMovements(c *fiber.Ctx) error {
	movs, err := h.ledger.GetRecentStockMovements(c.UserContext(), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err, nil)
	}
	tenantID := GetTenantID(c)
	visible := make([]*entity.StockMovement, 0, len(movs))
	for _, m := range movs {
		if m.TenantID == tenantID {
			visible = append(visible, m)
		}
	}
	return c.JSON(dto.NewMovementList(visible))
}

// ReconcileItem godoc
// @Summary      Ajustar un ítem al conteo físico
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del ítem"
// @Param        body  body  dto.ReconcileRequest  true  "physical_count, reason"
// @Success      201   {object}  dto.TransactionResultResponse  "ajuste confirmado"
// @Success      200   {object}  dto.TransactionResultResponse  "sin diferencia (no-op)"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/reconcile [post]
func (h *InventoryHandler) ReconcileItem(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	res, err := h.ledger.ReconcileItem(c.UserContext(), c.Params("id"), in.PhysicalCount, actorFrom(c, in.LocationID), in.Reason)
	return writeResult(c, res, err)
}

// GetReorderRecommendations godoc
// @Summary      Recomendaciones de reposición de la sede
// @Description  Ítems de la sede ordenados de más a menos urgente, con el consumo diario de la ventana configurada.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "sede (solo si el token no trae una)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/reorder-recommendations [get]
func (h *InventoryHandler) GetReorderRecommendations(c *fiber.Ctx) error {
	actor := actorFrom(c, c.Query("location_id"))
	if actor.LocationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_LOCATION", Message: "location_id es requerido"})
	}
	recs, err := h.reorder.GetReorderRecommendations(c.UserContext(), actor.TenantID, actor.LocationID)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(fiber.Map{
		"total":           len(recs),
		"recommendations": dto.NewReorderList(recs),
	})
}
