package tips

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// Participant: dağıtıma giren personel. Weight yönteme göre saat,
// bahşiş ağırlığı veya 1'dir.
type Participant struct {
	EmployeeID uint
	Weight     float64
}

// Share: tek personelin payı. AmountCents kuruş cinsindendir,
// toplamı havuz tutarına kuruşu kuruşuna eşittir.
type Share struct {
	EmployeeID  uint
	Weight      float64
	AmountCents int64
}

var (
	ErrNegativeTotal  = errors.New("bahşiş tutarı negatif olamaz")
	ErrNoParticipants = errors.New("dağıtılacak katılımcı yok")
	ErrNoWeight       = errors.New("katılımcıların ağırlık toplamı sıfır")
)

var hundred = decimal.NewFromInt(100)

// ToCents: TL tutarını kuruşa çevirir (yarım kuruş yukarı yuvarlanır)
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// DistributeCents: totalCents kuruşu ağırlıklara orantılı dağıtır.
// Taban pay = floor(total * w / toplam_w); artan kuruşlar kesir payı en
// büyük olandan başlayarak birer birer verilir. Eşitlikte önce büyük
// ağırlık, sonra küçük employee id kazanır. Sonuç girdi sırasını korur.
func DistributeCents(totalCents int64, parts []Participant) ([]Share, error) {
	if totalCents < 0 {
		return nil, ErrNegativeTotal
	}
	if len(parts) == 0 {
		return nil, ErrNoParticipants
	}

	shares := make([]Share, len(parts))
	for i, p := range parts {
		shares[i] = Share{EmployeeID: p.EmployeeID, Weight: p.Weight}
	}

	sumW := decimal.Zero
	for _, p := range parts {
		if p.Weight > 0 {
			sumW = sumW.Add(decimal.NewFromFloat(p.Weight))
		}
	}

	if sumW.IsZero() {
		// Tutar da sıfırsa herkes 0 alır, aksi halde dağıtım yapılamaz
		if totalCents == 0 {
			return shares, nil
		}
		return nil, ErrNoWeight
	}

	total := decimal.NewFromInt(totalCents)

	// Taban paylar ve kesirler
	type remainder struct {
		idx  int
		frac decimal.Decimal
	}
	remainders := make([]remainder, 0, len(parts))

	var distributed int64
	for i, p := range parts {
		if p.Weight <= 0 {
			continue // sıfır ağırlık pay ve artık kuruş almaz
		}
		exact := total.Mul(decimal.NewFromFloat(p.Weight)).Div(sumW)
		floor := exact.Floor()
		shares[i].AmountCents = floor.IntPart()
		distributed += floor.IntPart()
		remainders = append(remainders, remainder{idx: i, frac: exact.Sub(floor)})
	}

	// Artan kuruşlar: kesir büyükten küçüğe, eşitlikte ağırlık büyük olan,
	// o da eşitse employee id küçük olan önce
	leftover := totalCents - distributed
	sort.SliceStable(remainders, func(a, b int) bool {
		cmp := remainders[a].frac.Cmp(remainders[b].frac)
		if cmp != 0 {
			return cmp > 0
		}
		wa := parts[remainders[a].idx].Weight
		wb := parts[remainders[b].idx].Weight
		if wa != wb {
			return wa > wb
		}
		return parts[remainders[a].idx].EmployeeID < parts[remainders[b].idx].EmployeeID
	})

	for i := int64(0); i < leftover && int(i) < len(remainders); i++ {
		shares[remainders[i].idx].AmountCents++
	}

	return shares, nil
}

// Distribute: TL cinsinden giriş için sarmalayıcı
func Distribute(total float64, parts []Participant) ([]Share, error) {
	return DistributeCents(ToCents(total), parts)
}

// AmountTL: kuruş payını TL'ye çevirir
func (s Share) AmountTL() float64 {
	v, _ := decimal.NewFromInt(s.AmountCents).Div(hundred).Float64()
	return v
}
