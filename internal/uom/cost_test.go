package uom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientCostOK(t *testing.T) {
	// 0.5 kg un, taban birim g, g başına 0.045 TL
	res := IngredientCost(0.5, "kg", ItemCostInput{
		BaseUnit: "g",
		UnitCost: 0.045,
	})

	require.Equal(t, CostOK, res.Status)
	assert.InDelta(t, 500, res.BaseQty, 0.0001)
	assert.InDelta(t, 22.5, res.Cost, 0.0001)
	assert.Empty(t, res.Warning)
}

func TestIngredientCostWithConversion(t *testing.T) {
	// 2 koli domates, 1 koli = 5 kg, taban birim g
	res := IngredientCost(2, "koli", ItemCostInput{
		BaseUnit: "g",
		UnitCost: 0.02,
		Conversions: []ItemConversion{
			{FromUnit: "koli", ToUnit: "kg", Factor: 5},
		},
	})

	require.Equal(t, CostOK, res.Status)
	assert.InDelta(t, 10000, res.BaseQty, 0.0001)
	assert.InDelta(t, 200, res.Cost, 0.0001)
}

func TestIngredientCostNoCost(t *testing.T) {
	res := IngredientCost(100, "g", ItemCostInput{
		BaseUnit: "g",
		UnitCost: 0,
	})

	require.Equal(t, CostNoCost, res.Status)
	assert.InDelta(t, 100, res.BaseQty, 0.0001)
	assert.Equal(t, 0.0, res.Cost)
	assert.NotEmpty(t, res.Warning)
}

func TestIngredientCostMissingConversion(t *testing.T) {
	res := IngredientCost(1, "koli", ItemCostInput{
		BaseUnit: "g",
		UnitCost: 0.05,
	})

	require.Equal(t, CostMissingConversion, res.Status)
	assert.Equal(t, 0.0, res.BaseQty)
	assert.Equal(t, 0.0, res.Cost)
	assert.Contains(t, res.Warning, "koli")
	assert.Contains(t, res.Warning, "g")
}
