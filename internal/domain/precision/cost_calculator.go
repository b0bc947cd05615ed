package precision

import (
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// WeightedAverageCost implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockAntes * CostoAntes) + (CantEntrada * CostoEntrada)) / (StockAntes + CantEntrada)
// Cada producto y la suma se redondean a 4 decimales antes de la división final.
// Si el stock total resulta cero devuelve 0. Un stock previo negativo entra tal cual en la fórmula.
func WeightedAverageCost(stockBefore, costBefore, stockAdded, costAdded decimal.Decimal) decimal.Decimal {
	currentValue := Multiply(stockBefore, costBefore, DefaultPlaces)
	addedValue := Multiply(stockAdded, costAdded, DefaultPlaces)
	totalValue := Add(currentValue, addedValue, DefaultPlaces)
	totalStock := Add(stockBefore, stockAdded, DefaultPlaces)
	if totalStock.IsZero() {
		return decimal.Zero
	}
	cost, err := Divide(totalValue, totalStock, DefaultPlaces)
	if err != nil {
		return decimal.Zero
	}
	return cost
}

// ReorderLevel = consumoDiario * díasDeEntrega + stockDeSeguridad.
func ReorderLevel(dailyUsage, leadTimeDays, safetyStock decimal.Decimal) decimal.Decimal {
	return Add(Multiply(dailyUsage, leadTimeDays, DefaultPlaces), safetyStock, DefaultPlaces)
}

// ScaleIngredient escala la cantidad de una receta de originalYield a targetYield porciones.
func ScaleIngredient(qty, originalYield, targetYield decimal.Decimal, places int32) (decimal.Decimal, error) {
	if originalYield.IsZero() {
		return decimal.Zero, domain.ErrInvalidYield
	}
	scaledQty, err := Divide(qty.Mul(targetYield), originalYield, places)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidYield
	}
	return scaledQty, nil
}
