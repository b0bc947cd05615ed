// Package precision implementa la aritmética decimal de punto fijo del ledger:
// operaciones redondeadas, conversión de unidades y fórmulas de inventario.
// No tiene efectos secundarios salvo el warning de conversión no soportada.
package precision

import (
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Valores por defecto de la capa aritmética.
const (
	DefaultPlaces int32 = 4
	StockPlaces   int32 = 3
)

// DefaultTolerance tolerancia por defecto de Equals (0.0001).
var DefaultTolerance = decimal.New(1, -4)

// scaled lleva v a entero escalado por 10^places (redondeo half-up).
func scaled(v decimal.Decimal, places int32) decimal.Decimal {
	return v.Shift(places).Round(0)
}

// Round redondea v a places decimales.
func Round(v decimal.Decimal, places int32) decimal.Decimal {
	return v.Round(places)
}

// Add suma a y b como enteros escalados y devuelve el resultado con places decimales.
func Add(a, b decimal.Decimal, places int32) decimal.Decimal {
	return scaled(a, places).Add(scaled(b, places)).Shift(-places)
}

// Subtract resta b de a como enteros escalados.
func Subtract(a, b decimal.Decimal, places int32) decimal.Decimal {
	return scaled(a, places).Sub(scaled(b, places)).Shift(-places)
}

// Multiply multiplica los enteros escalados y deshace la doble escala.
func Multiply(a, b decimal.Decimal, places int32) decimal.Decimal {
	return scaled(a, places).Mul(scaled(b, places)).Shift(-2 * places).Round(places)
}

// Divide divide a entre b. Falla con domain.ErrDivisionByZero si b es cero tras escalar.
func Divide(a, b decimal.Decimal, places int32) (decimal.Decimal, error) {
	sb := scaled(b, places)
	if sb.IsZero() {
		return decimal.Zero, domain.ErrDivisionByZero
	}
	// las escalas se cancelan: (a·s)/(b·s) = a/b
	return scaled(a, places).DivRound(sb, places), nil
}

// Equals compara a y b dentro de tolerance (estrictamente menor).
func Equals(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

// Sum acumula valores con Add.
func Sum(values []decimal.Decimal, places int32) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = Add(total, v, places)
	}
	return total
}
