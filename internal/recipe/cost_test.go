package recipe

import (
	"testing"

	"mutfak-backend/internal/models"
	"mutfak-backend/internal/uom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func costInput() CostInput {
	return CostInput{
		Products: map[uint]models.Product{
			1: {ID: 1, Name: "Un", BaseUnit: "g", LastUnitCost: 0.04},
			2: {ID: 2, Name: "Süt", BaseUnit: "ml", LastUnitCost: 0.03},
			3: {ID: 3, Name: "Yumurta", BaseUnit: "adet", LastUnitCost: 5},
			4: {ID: 4, Name: "Krep Hamuru", BaseUnit: "g", IsPrepped: true},
			5: {ID: 5, Name: "Tuz", BaseUnit: "g"}, // maliyeti yok
		},
		Conversions:     map[uint][]uom.ItemConversion{},
		RecipeByProduct: map[uint]*models.PrepRecipe{},
	}
}

func TestComputeCostBasic(t *testing.T) {
	rec := models.PrepRecipe{
		ID:        10,
		Name:      "Krep Hamuru",
		ProductID: 4,
		YieldQty:  2,
		YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{
			{ProductID: 1, Quantity: 1, Unit: "kg"},    // 1000 g * 0.04 = 40
			{ProductID: 2, Quantity: 1.5, Unit: "lt"},  // 1500 ml * 0.03 = 45
			{ProductID: 3, Quantity: 6, Unit: "adet"},  // 6 * 5 = 30
		},
	}

	res := ComputeCost(rec, 1, costInput())

	require.Len(t, res.Items, 3)
	assert.InDelta(t, 115, res.TotalCost, 0.0001)

	// verim: 2 kg = 2000 g, birim maliyet 115/2000
	assert.InDelta(t, 2000, res.YieldBaseQty, 0.0001)
	assert.InDelta(t, 0.0575, res.UnitCost, 0.0000001)
	assert.Empty(t, res.Warnings)

	for _, item := range res.Items {
		assert.Equal(t, string(uom.CostOK), item.Status)
	}
}

func TestComputeCostWithScale(t *testing.T) {
	rec := models.PrepRecipe{
		ID:        10,
		Name:      "Krep Hamuru",
		ProductID: 4,
		YieldQty:  2,
		YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{
			{ProductID: 1, Quantity: 1, Unit: "kg"},
		},
	}

	res := ComputeCost(rec, 3, costInput())

	// miktarlar ve verim 3 katına çıkar, birim maliyet değişmez
	assert.InDelta(t, 3000, res.Items[0].BaseQty, 0.0001)
	assert.InDelta(t, 120, res.TotalCost, 0.0001)
	assert.InDelta(t, 6000, res.YieldBaseQty, 0.0001)
	assert.InDelta(t, 0.02, res.UnitCost, 0.0000001)
}

func TestComputeCostNoCostIngredient(t *testing.T) {
	rec := models.PrepRecipe{
		ID:        11,
		Name:      "Tuzlu Su",
		ProductID: 4,
		YieldQty:  1,
		YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{
			{ProductID: 5, Quantity: 20, Unit: "g"},
			{ProductID: 2, Quantity: 1, Unit: "lt"},
		},
	}

	res := ComputeCost(rec, 1, costInput())

	assert.Equal(t, string(uom.CostNoCost), res.Items[0].Status)
	assert.InDelta(t, 20, res.Items[0].BaseQty, 0.0001) // miktar yine çevrilir
	assert.Equal(t, 0.0, res.Items[0].Cost)
	assert.Equal(t, string(uom.CostOK), res.Items[1].Status)
	assert.InDelta(t, 30, res.TotalCost, 0.0001) // sadece süt
	assert.NotEmpty(t, res.Warnings)
}

func TestComputeCostMissingConversion(t *testing.T) {
	rec := models.PrepRecipe{
		ID:        12,
		Name:      "Deneme",
		ProductID: 4,
		YieldQty:  1,
		YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{
			{ProductID: 1, Quantity: 2, Unit: "koli"}, // un için koli dönüşümü yok
		},
	}

	res := ComputeCost(rec, 1, costInput())

	assert.Equal(t, string(uom.CostMissingConversion), res.Items[0].Status)
	assert.Equal(t, 0.0, res.TotalCost)
	assert.NotEmpty(t, res.Warnings)
}

func TestComputeCostNestedPrepped(t *testing.T) {
	in := costInput()

	// Sos reçetesi: 1 kg krep hamuru (maliyetsiz yarı mamul) + süt
	hamurRec := models.PrepRecipe{
		ID:        20,
		Name:      "Krep Hamuru",
		ProductID: 4,
		YieldQty:  2,
		YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{
			{ProductID: 1, Quantity: 1, Unit: "kg"}, // 40 TL -> 2000 g verim -> 0.02 TL/g
		},
	}
	in.RecipeByProduct[4] = &hamurRec
	in.Products[6] = models.Product{ID: 6, Name: "Hazır Krep", BaseUnit: "adet", IsPrepped: true}

	rec := models.PrepRecipe{
		ID:        21,
		Name:      "Hazır Krep",
		ProductID: 6,
		YieldQty:  10,
		YieldUnit: "adet",
		Ingredients: []models.RecipeIngredient{
			{ProductID: 4, Quantity: 500, Unit: "g"}, // 500 * 0.02 = 10 TL
		},
	}

	res := ComputeCost(rec, 1, in)

	require.Len(t, res.Items, 1)
	assert.Equal(t, string(uom.CostOK), res.Items[0].Status)
	assert.InDelta(t, 0.02, res.Items[0].UnitCost, 0.0000001)
	assert.InDelta(t, 10, res.TotalCost, 0.0001)
	assert.InDelta(t, 1, res.UnitCost, 0.0000001) // 10 TL / 10 adet
}

func TestComputeCostRecursiveRecipe(t *testing.T) {
	in := costInput()
	in.Products[7] = models.Product{ID: 7, Name: "A", BaseUnit: "g", IsPrepped: true}
	in.Products[8] = models.Product{ID: 8, Name: "B", BaseUnit: "g", IsPrepped: true}

	// A, B'yi kullanıyor; B de A'yı: döngü
	recA := models.PrepRecipe{
		ID: 30, Name: "A Reçetesi", ProductID: 7, YieldQty: 1, YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{{ProductID: 8, Quantity: 100, Unit: "g"}},
	}
	recB := models.PrepRecipe{
		ID: 31, Name: "B Reçetesi", ProductID: 8, YieldQty: 1, YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{{ProductID: 7, Quantity: 100, Unit: "g"}},
	}
	in.RecipeByProduct[7] = &recA
	in.RecipeByProduct[8] = &recB

	res := ComputeCost(recA, 1, in)

	require.Len(t, res.Items, 1)
	// B'nin alt hesabı A'ya geri dönünce döngü yakalanır ve dışarıya da
	// döngü olarak yansır, maliyetsiz ürün gibi görünmez
	assert.Equal(t, StatusRecursive, res.Items[0].Status)
	assert.Equal(t, 0.0, res.TotalCost)

	// Alt hesabın uyarısı reçete adıyla üst sonuca taşınır
	assert.Contains(t, res.Warnings, "B Reçetesi: döngüsel reçete: A Reçetesi")
	assert.Contains(t, res.Warnings, "döngüsel reçete: B Reçetesi")
}

func TestComputeCostRecursiveRecipeDeep(t *testing.T) {
	in := costInput()
	in.Products[7] = models.Product{ID: 7, Name: "A", BaseUnit: "g", IsPrepped: true}
	in.Products[8] = models.Product{ID: 8, Name: "B", BaseUnit: "g", IsPrepped: true}
	in.Products[9] = models.Product{ID: 9, Name: "C", BaseUnit: "g", IsPrepped: true}

	// Üç seviyeli döngü: A -> B -> C -> A
	recA := models.PrepRecipe{
		ID: 30, Name: "A Reçetesi", ProductID: 7, YieldQty: 1, YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{{ProductID: 8, Quantity: 100, Unit: "g"}},
	}
	recB := models.PrepRecipe{
		ID: 31, Name: "B Reçetesi", ProductID: 8, YieldQty: 1, YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{{ProductID: 9, Quantity: 100, Unit: "g"}},
	}
	recC := models.PrepRecipe{
		ID: 32, Name: "C Reçetesi", ProductID: 9, YieldQty: 1, YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{{ProductID: 7, Quantity: 100, Unit: "g"}},
	}
	in.RecipeByProduct[7] = &recA
	in.RecipeByProduct[8] = &recB
	in.RecipeByProduct[9] = &recC

	res := ComputeCost(recA, 1, in)

	// Döngü işareti her seviyeden yukarı taşınır
	require.Len(t, res.Items, 1)
	assert.Equal(t, StatusRecursive, res.Items[0].Status)
	assert.Contains(t, res.Warnings, "döngüsel reçete: B Reçetesi")
}

func TestComputeCostNestedWarningsPropagate(t *testing.T) {
	in := costInput()
	in.Products[6] = models.Product{ID: 6, Name: "Hazır Krep", BaseUnit: "adet", IsPrepped: true}

	// Alt reçetenin malzemesi maliyetsiz (Tuz): uyarı üst sonuca taşınmalı
	hamurRec := models.PrepRecipe{
		ID: 20, Name: "Krep Hamuru", ProductID: 4, YieldQty: 1, YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{
			{ProductID: 1, Quantity: 1, Unit: "kg"}, // 40 TL
			{ProductID: 5, Quantity: 20, Unit: "g"}, // maliyetsiz
		},
	}
	in.RecipeByProduct[4] = &hamurRec

	rec := models.PrepRecipe{
		ID: 21, Name: "Hazır Krep", ProductID: 6, YieldQty: 10, YieldUnit: "adet",
		Ingredients: []models.RecipeIngredient{
			{ProductID: 4, Quantity: 500, Unit: "g"},
		},
	}

	res := ComputeCost(rec, 1, in)

	// Döngü yok, alt reçetenin birim maliyeti yine kullanılır
	require.Len(t, res.Items, 1)
	assert.Equal(t, string(uom.CostOK), res.Items[0].Status)
	assert.InDelta(t, 0.04, res.Items[0].UnitCost, 0.0000001) // 40 TL / 1000 g

	assert.Contains(t, res.Warnings, "Krep Hamuru: Tuz: ürünün birim maliyeti tanımlı değil")
}

func TestComputeCostDirectCycleFlagged(t *testing.T) {
	in := costInput()
	in.Products[7] = models.Product{ID: 7, Name: "A", BaseUnit: "g", IsPrepped: true}

	// Reçete kendi çıktısını malzeme olarak kullanıyor
	recA := models.PrepRecipe{
		ID: 30, Name: "A Reçetesi", ProductID: 7, YieldQty: 1, YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{{ProductID: 7, Quantity: 100, Unit: "g"}},
	}
	in.RecipeByProduct[7] = &recA

	res := ComputeCost(recA, 1, in)

	require.Len(t, res.Items, 1)
	assert.Equal(t, StatusRecursive, res.Items[0].Status)
	assert.Equal(t, 0.0, res.Items[0].Cost)
	assert.NotEmpty(t, res.Warnings)
}

func TestComputeCostZeroYield(t *testing.T) {
	rec := models.PrepRecipe{
		ID:        13,
		Name:      "Verimsiz",
		ProductID: 4,
		YieldQty:  0,
		YieldUnit: "kg",
		Ingredients: []models.RecipeIngredient{
			{ProductID: 1, Quantity: 1, Unit: "kg"},
		},
	}

	res := ComputeCost(rec, 1, costInput())

	assert.InDelta(t, 40, res.TotalCost, 0.0001)
	assert.Equal(t, 0.0, res.UnitCost)
	assert.NotEmpty(t, res.Warnings)
}

func TestComputeCostEmptyIngredients(t *testing.T) {
	rec := models.PrepRecipe{
		ID:        14,
		Name:      "Boş",
		ProductID: 4,
		YieldQty:  1,
		YieldUnit: "kg",
	}

	res := ComputeCost(rec, 1, costInput())

	assert.Equal(t, 0.0, res.TotalCost)
	assert.Equal(t, 0.0, res.UnitCost)
	assert.Empty(t, res.Items)
}

func TestComputeCostUnknownYieldUnit(t *testing.T) {
	rec := models.PrepRecipe{
		ID:        15,
		Name:      "Tepsi Böreği",
		ProductID: 4,
		YieldQty:  2,
		YieldUnit: "tepsi", // dönüşüm tanımsız
		Ingredients: []models.RecipeIngredient{
			{ProductID: 1, Quantity: 1, Unit: "kg"},
		},
	}

	res := ComputeCost(rec, 1, costInput())

	assert.InDelta(t, 40, res.TotalCost, 0.0001)
	assert.Equal(t, 0.0, res.UnitCost)
	assert.NotEmpty(t, res.Warnings)
}
