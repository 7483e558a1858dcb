package uom

import "fmt"

type CostStatus string

const (
	CostOK                CostStatus = "ok"
	CostNoCost            CostStatus = "no_cost"
	CostMissingConversion CostStatus = "missing_conversion"
)

// ItemCostInput: maliyet hesabı için ürün bilgisi.
// UnitCost ürünün taban birimi başına son alış maliyetidir.
type ItemCostInput struct {
	BaseUnit    string
	UnitCost    float64
	Conversions []ItemConversion
}

// IngredientCostResult: tek kalemin maliyet sonucu.
// BaseQty her durumda (dönüşüm varsa) doldurulur, Cost sadece Status=ok iken anlamlıdır.
type IngredientCostResult struct {
	BaseQty float64    `json:"base_qty"`
	Cost    float64    `json:"cost"`
	Status  CostStatus `json:"status"`
	Warning string     `json:"warning,omitempty"`
}

// IngredientCost: qty unit kadar malzemenin taban birim karşılığını ve maliyetini hesaplar.
// Dönüşüm bulunamazsa missing_conversion, maliyet bilgisi yoksa no_cost döner;
// iki durumda da hesap durmaz, uyarı metniyle devam edilir.
func IngredientCost(qty float64, unit string, item ItemCostInput) IngredientCostResult {
	baseQty, ok := Convert(qty, unit, item.BaseUnit, item.Conversions)
	if !ok {
		return IngredientCostResult{
			Status:  CostMissingConversion,
			Warning: fmt.Sprintf("birim dönüşümü bulunamadı: %s -> %s", Normalize(unit), Normalize(item.BaseUnit)),
		}
	}

	if item.UnitCost <= 0 {
		return IngredientCostResult{
			BaseQty: baseQty,
			Status:  CostNoCost,
			Warning: "ürünün birim maliyeti tanımlı değil",
		}
	}

	return IngredientCostResult{
		BaseQty: baseQty,
		Cost:    baseQty * item.UnitCost,
		Status:  CostOK,
	}
}
