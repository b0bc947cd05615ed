// Package inventory contiene la capa de cálculo del ledger: funciones puras que validan
// un ítem y un movimiento propuesto, calculan el stock y costo resultantes y generan
// los reportes de descuento masivo, reorden y reconciliación. No hace I/O.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CalculationResult resultado en memoria de un cambio propuesto. Nunca se persiste.
type CalculationResult struct {
	Success   bool
	NewStock  decimal.Decimal
	TotalCost *decimal.Decimal
	Warnings  []string
	Errors    []string
	// Movement es el registro a persistir; nil si el cálculo falló.
	Movement *entity.StockMovement
}

// HasWarnings indica si el resultado trae advertencias.
func (r CalculationResult) HasWarnings() bool { return len(r.Warnings) > 0 }
