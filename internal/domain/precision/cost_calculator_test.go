package precision_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/precision"
)

func TestWeightedAverageCost_Ejemplo(t *testing.T) {
	// (100·10 + 50·16) / 150 = 12
	got := precision.WeightedAverageCost(dec("100"), dec("10"), dec("50"), dec("16"))
	assert.True(t, got.Equal(dec("12")), "got %s", got)
}

func TestWeightedAverageCost_StockCero(t *testing.T) {
	got := precision.WeightedAverageCost(decimal.Zero, dec("10"), decimal.Zero, dec("16"))
	assert.True(t, got.IsZero())

	// sin stock previo el costo es el de la entrada
	got = precision.WeightedAverageCost(decimal.Zero, dec("10"), dec("5"), dec("16"))
	assert.True(t, got.Equal(dec("16")))
}

func TestWeightedAverageCost_StockPrevioNegativo(t *testing.T) {
	// (-10·10 + 20·16) / 10
	got := precision.WeightedAverageCost(dec("-10"), dec("10"), dec("20"), dec("16"))
	assert.True(t, got.Equal(dec("22")), "got %s", got)

	// el stock total queda en cero
	got = precision.WeightedAverageCost(dec("-50"), dec("10"), dec("50"), dec("16"))
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestReorderLevel(t *testing.T) {
	got := precision.ReorderLevel(dec("2.5"), dec("4"), dec("3"))
	assert.True(t, got.Equal(dec("13")))
}

func TestScaleIngredient(t *testing.T) {
	got, err := precision.ScaleIngredient(dec("200"), dec("4"), dec("10"), precision.DefaultPlaces)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("500")))

	_, err = precision.ScaleIngredient(dec("200"), decimal.Zero, dec("10"), precision.DefaultPlaces)
	assert.ErrorIs(t, err, domain.ErrInvalidYield)
}
