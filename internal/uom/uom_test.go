package uom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"g", "g"},
		{"GR", "g"},
		{" Gram ", "g"},
		{"Kg", "kg"},
		{"KILO", "kg"},
		{"lt", "l"},
		{"Litre", "l"},
		{"ML", "ml"},
		{"Adet", "adet"},
		{"pcs", "adet"},
		{"each", "adet"},
		{"tane", "adet"},
		{"dozen", "duzine"},
		{"koli", "koli"}, // bilinmeyen birim olduğu gibi kalır
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilyMass, FamilyOf("kg"))
	assert.Equal(t, FamilyMass, FamilyOf("GR"))
	assert.Equal(t, FamilyVolume, FamilyOf("lt"))
	assert.Equal(t, FamilyVolume, FamilyOf("tbsp"))
	assert.Equal(t, FamilyCount, FamilyOf("adet"))
	assert.Equal(t, FamilyCount, FamilyOf("duzine"))
	assert.Equal(t, FamilyUnknown, FamilyOf("koli"))
	assert.Equal(t, FamilyUnknown, FamilyOf(""))
}

func TestBaseUnit(t *testing.T) {
	assert.Equal(t, "g", BaseUnit(FamilyMass))
	assert.Equal(t, "ml", BaseUnit(FamilyVolume))
	assert.Equal(t, "adet", BaseUnit(FamilyCount))
	assert.Equal(t, "", BaseUnit(FamilyUnknown))
}

func TestConvertSameFamily(t *testing.T) {
	tests := []struct {
		name string
		qty  float64
		from string
		to   string
		want float64
	}{
		{"kg to g", 2.5, "kg", "g", 2500},
		{"g to kg", 750, "g", "kg", 0.75},
		{"mg to g", 500, "mg", "g", 0.5},
		{"lb to g", 1, "lb", "g", 453.592},
		{"oz to kg", 16, "oz", "kg", 0.453592},
		{"l to ml", 1.5, "lt", "ml", 1500},
		{"cl to ml", 3, "cl", "ml", 30},
		{"tbsp to tsp", 1, "tbsp", "tsp", 3},
		{"cup to l", 2, "cup", "l", 0.48},
		{"duzine to adet", 2, "duzine", "adet", 24},
		{"alias gr to kg", 1500, "gr", "kg", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Convert(tt.qty, tt.from, tt.to, nil)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestConvertIdentity(t *testing.T) {
	got, ok := Convert(7, "kg", "KG", nil)
	require.True(t, ok)
	assert.Equal(t, 7.0, got)

	// bilinmeyen ama aynı birim de kimliktir
	got, ok = Convert(3, "koli", "Koli", nil)
	require.True(t, ok)
	assert.Equal(t, 3.0, got)
}

func TestConvertCrossFamilyFails(t *testing.T) {
	_, ok := Convert(1, "kg", "ml", nil)
	assert.False(t, ok)

	_, ok = Convert(1, "adet", "g", nil)
	assert.False(t, ok)

	_, ok = Convert(1, "", "g", nil)
	assert.False(t, ok)
}

func TestConvertWithItemConversions(t *testing.T) {
	convs := []ItemConversion{
		{FromUnit: "koli", ToUnit: "adet", Factor: 24},
		{FromUnit: "adet", ToUnit: "g", Factor: 330},
	}

	// koli -> adet (tek kenar)
	got, ok := Convert(2, "koli", "adet", convs)
	require.True(t, ok)
	assert.InDelta(t, 48, got, 0.0001)

	// koli -> g (zincir: koli -> adet -> g)
	got, ok = Convert(1, "koli", "g", convs)
	require.True(t, ok)
	assert.InDelta(t, 7920, got, 0.0001)

	// koli -> kg (zincir + aile tablosu)
	got, ok = Convert(1, "koli", "kg", convs)
	require.True(t, ok)
	assert.InDelta(t, 7.92, got, 0.0001)

	// ters yön: g -> adet
	got, ok = Convert(660, "g", "adet", convs)
	require.True(t, ok)
	assert.InDelta(t, 2, got, 0.0001)

	// ters yön + aile: kg -> koli
	got, ok = Convert(15.84, "kg", "koli", convs)
	require.True(t, ok)
	assert.InDelta(t, 2, got, 0.0001)
}

func TestConvertBadConversionIgnored(t *testing.T) {
	convs := []ItemConversion{
		{FromUnit: "koli", ToUnit: "adet", Factor: 0},
		{FromUnit: "koli", ToUnit: "adet", Factor: -5},
	}

	_, ok := Convert(1, "koli", "adet", convs)
	assert.False(t, ok)
}

func TestConvertChainLimit(t *testing.T) {
	// 4 kenarı aşan zincirler çözülmez
	convs := []ItemConversion{
		{FromUnit: "u1", ToUnit: "u2", Factor: 2},
		{FromUnit: "u2", ToUnit: "u3", Factor: 2},
		{FromUnit: "u3", ToUnit: "u4", Factor: 2},
		{FromUnit: "u4", ToUnit: "u5", Factor: 2},
		{FromUnit: "u5", ToUnit: "u6", Factor: 2},
	}

	got, ok := Convert(1, "u1", "u5", convs)
	require.True(t, ok)
	assert.InDelta(t, 16, got, 0.0001)

	_, ok = Convert(1, "u1", "u6", convs)
	assert.False(t, ok)
}
