package uom

import "strings"

type Family string

const (
	FamilyMass    Family = "mass"
	FamilyVolume  Family = "volume"
	FamilyCount   Family = "count"
	FamilyUnknown Family = "unknown"
)

// unitDef: yerleşik birim tanımı. ToBase, 1 birimin aile taban birimi
// cinsinden karşılığıdır (taban: g, ml, adet).
type unitDef struct {
	Family Family
	ToBase float64
}

var units = map[string]unitDef{
	// ağırlık (taban: g)
	"mg": {FamilyMass, 0.001},
	"g":  {FamilyMass, 1},
	"kg": {FamilyMass, 1000},
	"oz": {FamilyMass, 28.3495},
	"lb": {FamilyMass, 453.592},

	// hacim (taban: ml)
	"ml":   {FamilyVolume, 1},
	"cl":   {FamilyVolume, 10},
	"l":    {FamilyVolume, 1000},
	"tsp":  {FamilyVolume, 5},
	"tbsp": {FamilyVolume, 15},
	"cup":  {FamilyVolume, 240},
	"floz": {FamilyVolume, 29.5735},

	// adet (taban: adet)
	"adet":   {FamilyCount, 1},
	"duzine": {FamilyCount, 12},
}

// Türkçe/İngilizce yazım farkları için takma adlar
var aliases = map[string]string{
	"gr":       "g",
	"gram":     "g",
	"kilo":     "kg",
	"kilogram": "kg",
	"lt":       "l",
	"litre":    "l",
	"mililitre": "ml",
	"ad":       "adet",
	"tane":     "adet",
	"each":     "adet",
	"pcs":      "adet",
	"piece":    "adet",
	"düzine":   "duzine",
	"dozen":    "duzine",
}

// Normalize: birim adını karşılaştırılabilir hale getirir
// Örn: " GR " -> "g", "Adet" -> "adet"
func Normalize(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	// Türkçe büyük İ küçülünce "i̇" olabiliyor, sadeleştir
	u = strings.ReplaceAll(u, "̇", "")
	if alias, ok := aliases[u]; ok {
		return alias
	}
	return u
}

// FamilyOf: birimin ailesini döndürür (bilinmiyorsa FamilyUnknown)
func FamilyOf(unit string) Family {
	if def, ok := units[Normalize(unit)]; ok {
		return def.Family
	}
	return FamilyUnknown
}

// BaseUnit: ailenin taban birimi
func BaseUnit(f Family) string {
	switch f {
	case FamilyMass:
		return "g"
	case FamilyVolume:
		return "ml"
	case FamilyCount:
		return "adet"
	default:
		return ""
	}
}

// ItemConversion: ürüne özel dönüşüm kenarı (1 FromUnit = Factor ToUnit)
type ItemConversion struct {
	FromUnit string
	ToUnit   string
	Factor   float64
}

// maxPathLen: dönüşüm zinciri üst sınırı (koli -> adet -> g gibi zincirler
// için 4 kenar fazlasıyla yeterli, bozuk veride sonsuz aramayı keser)
const maxPathLen = 4

// Convert: qty miktarını from biriminden to birimine çevirir.
// Önce aile tablosu, yoksa ürün dönüşümleri üzerinden en kısa zincir aranır.
// Dönüşüm yoksa ok=false döner, asla panic olmaz.
func Convert(qty float64, from, to string, convs []ItemConversion) (float64, bool) {
	from = Normalize(from)
	to = Normalize(to)

	if from == "" || to == "" {
		return 0, false
	}
	if from == to {
		return qty, true
	}

	// Aynı aile: tablo üzerinden direkt
	fromDef, fromKnown := units[from]
	toDef, toKnown := units[to]
	if fromKnown && toKnown && fromDef.Family == toDef.Family {
		return qty * fromDef.ToBase / toDef.ToBase, true
	}

	// Farklı aile veya bilinmeyen birim: dönüşüm grafında BFS.
	// Komşular: aynı ailedeki diğer birimler + ürün dönüşüm kenarları (iki yönlü).
	type node struct {
		unit   string
		factor float64 // 1 from = factor * unit
		depth  int
	}

	visited := map[string]bool{from: true}
	queue := []node{{unit: from, factor: 1, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxPathLen {
			continue
		}

		var nexts []node

		// Aile içi geçiş: bilinen birimse ailenin taban birimine atla
		if def, ok := units[cur.unit]; ok {
			base := BaseUnit(def.Family)
			if base != cur.unit {
				nexts = append(nexts, node{unit: base, factor: cur.factor * def.ToBase, depth: cur.depth + 1})
			}
		}

		// Ürün dönüşümleri (giriş sırası korunur, ilk bulunan zincir kazanır)
		for _, cv := range convs {
			cf := Normalize(cv.FromUnit)
			ct := Normalize(cv.ToUnit)
			if cv.Factor <= 0 {
				continue
			}
			if cf == cur.unit {
				nexts = append(nexts, node{unit: ct, factor: cur.factor * cv.Factor, depth: cur.depth + 1})
			}
			if ct == cur.unit {
				nexts = append(nexts, node{unit: cf, factor: cur.factor / cv.Factor, depth: cur.depth + 1})
			}
		}

		for _, n := range nexts {
			// Hedefe ulaştıysak bitir; hedef bilinen bir birimse ailesi üzerinden
			// de ulaşmış olabiliriz
			if n.unit == to {
				return qty * n.factor, true
			}
			if def, ok := units[n.unit]; ok {
				if tDef, ok2 := units[to]; ok2 && def.Family == tDef.Family {
					return qty * n.factor * def.ToBase / tDef.ToBase, true
				}
			}
			if !visited[n.unit] {
				visited[n.unit] = true
				queue = append(queue, n)
			}
		}
	}

	return 0, false
}
