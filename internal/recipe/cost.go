package recipe

import (
	"fmt"
	"math"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/uom"
)

// Döngüsel reçete: malzeme zinciri kendine dönüyorsa maliyet 0 kabul edilir
const StatusRecursive = "recursive_recipe"

type IngredientCostItem struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	BaseQty     float64 `json:"base_qty"`
	BaseUnit    string  `json:"base_unit"`
	UnitCost    float64 `json:"unit_cost"`
	Cost        float64 `json:"cost"`
	Status      string  `json:"status"` // ok | no_cost | missing_conversion | recursive_recipe
	Warning     string  `json:"warning,omitempty"`
}

type CostResult struct {
	RecipeID     uint                 `json:"recipe_id"`
	RecipeName   string               `json:"recipe_name"`
	Scale        float64              `json:"scale"`
	YieldQty     float64              `json:"yield_qty"`
	YieldUnit    string               `json:"yield_unit"`
	YieldBaseQty float64              `json:"yield_base_qty"`
	TotalCost    float64              `json:"total_cost"` // 4 ondalık
	UnitCost     float64              `json:"unit_cost"`  // taban birim başına, 6 ondalık
	Items        []IngredientCostItem `json:"items"`
	Warnings     []string             `json:"warnings"`
}

// CostInput: maliyet hesabının ihtiyaç duyduğu her şey bellekte.
// Hesap hiçbir şey yazmaz, DB'ye de dokunmaz
type CostInput struct {
	Products        map[uint]models.Product
	Conversions     map[uint][]uom.ItemConversion
	RecipeByProduct map[uint]*models.PrepRecipe // yarı mamul ürün -> aktif reçetesi
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round6(v float64) float64 {
	return math.Round(v*1000000) / 1000000
}

func hasRecursiveItem(res CostResult) bool {
	for _, it := range res.Items {
		if it.Status == StatusRecursive {
			return true
		}
	}
	return false
}

// ComputeCost: reçetenin parti maliyeti. scale parti katsayısıdır (2 = çift parti).
// Malzeme maliyeti ürünün son alış maliyetinden gelir; maliyeti olmayan yarı
// mamullerde alt reçete özyinelemeli hesaplanır (döngü korumalı).
func ComputeCost(rec models.PrepRecipe, scale float64, in CostInput) CostResult {
	return computeCost(rec, scale, in, map[uint]bool{})
}

func computeCost(rec models.PrepRecipe, scale float64, in CostInput, visiting map[uint]bool) CostResult {
	visiting[rec.ID] = true
	defer delete(visiting, rec.ID)

	result := CostResult{
		RecipeID:   rec.ID,
		RecipeName: rec.Name,
		Scale:      scale,
		YieldQty:   rec.YieldQty * scale,
		YieldUnit:  rec.YieldUnit,
		Items:      make([]IngredientCostItem, 0, len(rec.Ingredients)),
		Warnings:   []string{},
	}

	var total float64

	for _, ing := range rec.Ingredients {
		item := IngredientCostItem{
			ProductID: ing.ProductID,
			Quantity:  ing.Quantity * scale,
			Unit:      uom.Normalize(ing.Unit),
		}

		p, found := in.Products[ing.ProductID]
		if !found {
			item.Status = string(uom.CostNoCost)
			item.Warning = "ürün kaydı bulunamadı"
			result.Items = append(result.Items, item)
			result.Warnings = append(result.Warnings, item.Warning)
			continue
		}

		item.ProductName = p.Name
		item.BaseUnit = uom.Normalize(p.BaseUnit)

		unitCost := p.LastUnitCost

		// Maliyeti hiç oluşmamış yarı mamul: alt reçeteden hesapla
		if p.IsPrepped && unitCost <= 0 {
			if sub := in.RecipeByProduct[p.ID]; sub != nil {
				if visiting[sub.ID] {
					item.Status = StatusRecursive
					item.Warning = fmt.Sprintf("döngüsel reçete: %s", sub.Name)
					result.Items = append(result.Items, item)
					result.Warnings = append(result.Warnings, item.Warning)
					continue
				}
				subResult := computeCost(*sub, 1, in, visiting)
				for _, w := range subResult.Warnings {
					result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", sub.Name, w))
				}
				// Alt hesap döngü yüzünden çöktüyse bu kalem de döngüseldir,
				// maliyetsiz ürünle karıştırılmamalı
				if subResult.UnitCost <= 0 && hasRecursiveItem(subResult) {
					item.Status = StatusRecursive
					item.Warning = fmt.Sprintf("döngüsel reçete: %s", sub.Name)
					result.Items = append(result.Items, item)
					result.Warnings = append(result.Warnings, item.Warning)
					continue
				}
				unitCost = subResult.UnitCost
			}
		}

		costRes := uom.IngredientCost(item.Quantity, ing.Unit, uom.ItemCostInput{
			BaseUnit:    p.BaseUnit,
			UnitCost:    unitCost,
			Conversions: in.Conversions[p.ID],
		})

		item.BaseQty = costRes.BaseQty
		item.UnitCost = unitCost
		item.Cost = round4(costRes.Cost)
		item.Status = string(costRes.Status)
		item.Warning = costRes.Warning

		if costRes.Warning != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", p.Name, costRes.Warning))
		}

		total += costRes.Cost
		result.Items = append(result.Items, item)
	}

	result.TotalCost = round4(total)

	// Verim taban birim karşılığı ve birim maliyet
	outP, found := in.Products[rec.ProductID]
	if !found {
		result.Warnings = append(result.Warnings, "çıktı ürünü bulunamadı")
		return result
	}

	yieldBase, ok := uom.Convert(result.YieldQty, rec.YieldUnit, outP.BaseUnit, in.Conversions[outP.ID])
	if !ok {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("verim birimi dönüştürülemedi: %s -> %s", uom.Normalize(rec.YieldUnit), uom.Normalize(outP.BaseUnit)))
		return result
	}
	result.YieldBaseQty = yieldBase

	if yieldBase <= 0 {
		result.Warnings = append(result.Warnings, "verim miktarı 0, birim maliyet hesaplanamadı")
		return result
	}

	result.UnitCost = round6(total / yieldBase)
	return result
}

// LoadCostInput: reçetenin maliyet kapanışını (ürünler, dönüşümler, alt
// reçeteler) tek seferde yükler. İç içe reçeteler için en fazla 10 seviye iner.
func LoadCostInput(branchID uint, rec models.PrepRecipe) (CostInput, error) {
	in := CostInput{
		Products:        make(map[uint]models.Product),
		Conversions:     make(map[uint][]uom.ItemConversion),
		RecipeByProduct: make(map[uint]*models.PrepRecipe),
	}

	pending := map[uint]bool{rec.ProductID: true}
	for _, ing := range rec.Ingredients {
		pending[ing.ProductID] = true
	}

	for depth := 0; len(pending) > 0 && depth < 10; depth++ {
		ids := make([]uint, 0, len(pending))
		for id := range pending {
			if _, loaded := in.Products[id]; !loaded {
				ids = append(ids, id)
			}
		}
		pending = map[uint]bool{}
		if len(ids) == 0 {
			break
		}

		var products []models.Product
		if err := database.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
			return in, err
		}
		for _, p := range products {
			in.Products[p.ID] = p
		}

		var convs []models.UnitConversion
		if err := database.DB.Where("product_id IN ?", ids).Find(&convs).Error; err != nil {
			return in, err
		}
		for _, cv := range convs {
			in.Conversions[cv.ProductID] = append(in.Conversions[cv.ProductID], uom.ItemConversion{
				FromUnit: cv.FromUnit,
				ToUnit:   cv.ToUnit,
				Factor:   cv.Factor,
			})
		}

		// Maliyeti olmayan yarı mamullerin aktif reçeteleri de gerekli
		var preppedIDs []uint
		for _, p := range products {
			if p.IsPrepped && p.LastUnitCost <= 0 {
				preppedIDs = append(preppedIDs, p.ID)
			}
		}
		if len(preppedIDs) == 0 {
			continue
		}

		var subRecipes []models.PrepRecipe
		if err := database.DB.Preload("Ingredients").
			Where("branch_id = ? AND product_id IN ? AND is_active = ?", branchID, preppedIDs, true).
			Order("id asc").
			Find(&subRecipes).Error; err != nil {
			return in, err
		}
		for i := range subRecipes {
			sub := subRecipes[i]
			if _, exists := in.RecipeByProduct[sub.ProductID]; exists {
				continue // ürün başına ilk aktif reçete geçerli
			}
			in.RecipeByProduct[sub.ProductID] = &subRecipes[i]
			for _, ing := range sub.Ingredients {
				if _, loaded := in.Products[ing.ProductID]; !loaded {
					pending[ing.ProductID] = true
				}
			}
		}
	}

	return in, nil
}
