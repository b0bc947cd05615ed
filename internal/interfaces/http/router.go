package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerService
	Reorder   *inventory.ReorderUseCase
	Metrics   *metrics.Metrics // nil = sin /metrics
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	inv := api.Group("/inventory", AuthMiddleware(deps.JWTSecret))
	h := NewInventoryHandler(deps.Ledger, deps.Reorder)

	inv.Post("/movements", h.ExecuteMovement)
	inv.Post("/movements/bulk", h.ExecuteBulk)
	inv.Post("/pos-orders", h.ProcessPOSOrder)
	inv.Post("/pos-orders/preview", h.PreviewPOSOrder)
	inv.Post("/transactions/:id/reverse", RequireRole(RoleAdmin, RoleManager), h.ReverseTransaction)
	inv.Get("/transactions/:id/audit", h.GetTransactionAudit)
	inv.Get("/items/:id/movements", h.GetItemMovements)
	inv.Post("/items/:id/reconcile", h.ReconcileItem)
	inv.Get("/reorder-recommendations", h.GetReorderRecommendations)
}

// MetricsMiddleware registra método, ruta y estado de cada petición.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.RecordHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
