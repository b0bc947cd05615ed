package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func pantry() []*entity.InventoryItem {
	return []*entity.InventoryItem{
		{ID: "flour", Name: "Harina", CurrentStock: dec("10"), Unit: "kg", CostPerUnit: dec("2"), MinStock: dec("1")},
		{ID: "milk", Name: "Leche", CurrentStock: dec("5"), Unit: "l", CostPerUnit: dec("1.5"), MinStock: dec("1")},
		{ID: "eggs", Name: "Huevos", CurrentStock: dec("24"), Unit: "unit", CostPerUnit: dec("0.2"), MinStock: dec("6")},
	}
}

func TestCalculateBulkDeductions_ConvierteUnidades(t *testing.T) {
	report := inventory.CalculateBulkDeductions(pantry(), []inventory.IngredientDeduction{
		{InventoryItemID: "flour", Quantity: dec("500"), Unit: "g"},
		{InventoryItemID: "milk", Quantity: dec("250"), Unit: "ml"},
		{InventoryItemID: "eggs", Quantity: dec("2")},
	})

	require.True(t, report.CanProceed)
	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].Quantity.Equal(dec("0.5")))
	assert.True(t, report.Results[0].Result.NewStock.Equal(dec("9.5")))
	assert.True(t, report.Results[1].Result.NewStock.Equal(dec("4.75")))
	// 0.5*2 + 0.25*1.5 + 2*0.2
	assert.True(t, report.TotalCost.Equal(dec("1.775")), "got %s", report.TotalCost)
}

func TestCalculateBulkDeductions_LineasFallidas(t *testing.T) {
	report := inventory.CalculateBulkDeductions(pantry(), []inventory.IngredientDeduction{
		{InventoryItemID: "flour", Quantity: dec("1")},
		{InventoryItemID: "ghost", Quantity: dec("1")},
		{InventoryItemID: "milk", Quantity: dec("1"), Unit: "kg"},
		{InventoryItemID: "eggs", Quantity: dec("100")},
	})

	assert.False(t, report.CanProceed)
	assert.False(t, report.Results[0].Failed())
	assert.Contains(t, report.Results[1].Error, "not found")
	assert.Contains(t, report.Results[2].Error, "incompatible units")
	assert.True(t, report.Results[3].Failed())
	assert.Contains(t, report.Results[3].Result.Errors[0], "insufficient")
	// solo suman las líneas exitosas
	assert.True(t, report.TotalCost.Equal(dec("2")))
}

func TestCalculateBulkDeductions_MismoItemAcumula(t *testing.T) {
	report := inventory.CalculateBulkDeductions(pantry(), []inventory.IngredientDeduction{
		{InventoryItemID: "milk", Quantity: dec("3")},
		{InventoryItemID: "milk", Quantity: dec("3")},
	})

	assert.False(t, report.CanProceed, "la segunda línea deja el stock en negativo")
	assert.True(t, report.Results[0].Result.NewStock.Equal(dec("2")))
	assert.Contains(t, report.Results[1].Result.Errors[0], "available 2")
}

func TestCalculateBulkDeductions_CostoEnUnidadDeLaDeduccion(t *testing.T) {
	report := inventory.CalculateBulkDeductions(pantry(), []inventory.IngredientDeduction{
		{InventoryItemID: "flour", Quantity: dec("500"), Unit: "g", CostOverride: ptr(dec("0.01"))},
	})

	require.True(t, report.CanProceed)
	mov := report.Results[0].Result.Movement
	assert.True(t, mov.UnitCost.Equal(dec("10")), "0.01 por gramo = 10 por kg, got %s", mov.UnitCost)
	assert.True(t, report.TotalCost.Equal(dec("5")), "got %s", report.TotalCost)
}

func TestToItemUnit(t *testing.T) {
	qty, cost, err := inventory.ToItemUnit(dec("-250"), ptr(dec("0.004")), "ml", "l")
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("-0.25")))
	assert.True(t, cost.Equal(dec("4")))

	qty, cost, err = inventory.ToItemUnit(dec("3"), nil, "", "kg")
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("3")))
	assert.Nil(t, cost)

	_, _, err = inventory.ToItemUnit(dec("3"), nil, "kg", "ml")
	assert.ErrorIs(t, err, domain.ErrIncompatibleUnits)
}
