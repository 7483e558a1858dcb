package inventory

import (
	"testing"

	"mutfak-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTurkish(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CADI SÜTLÜ ÇİKOLATA", "cadi sutlu cikolata"},
		{"şğüöçı", "sguoci"},
		{"Domates", "domates"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeTurkish(tc.in), "girdi: %q", tc.in)
	}
}

func TestNormalizeProductName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BEYAZ ANTEP FISTIKLI KIRMA ÇİKOLATA 1KG", "beyaz antep fistikli kirma cikolata"},
		{"beyaz antep fıstıklı kırma çikolata", "beyaz antep fistikli kirma cikolata"},
		{"SÜT 2.5LT", "sut"},
		{"Un 500 GR", "un"},
		{"Tam Yağlı Süt", "tam yagli sut"},
		// Ürün adının ortasındaki sayılar da temizlenir
		{"Yumurta 30 lu", "yumurta lu"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeProductName(tc.in), "girdi: %q", tc.in)
	}
}

func TestIsNumericOrUnit(t *testing.T) {
	truthy := []string{"1", "500", "2.5", "1kg", "500gr", "2.5lt", "KG", "ml", "l"}
	for _, w := range truthy {
		assert.True(t, isNumericOrUnit(w), "kelime: %q", w)
	}

	falsy := []string{"domates", "sut", "1adet", "kg5", ""}
	for _, w := range falsy {
		assert.False(t, isNumericOrUnit(w), "kelime: %q", w)
	}
}

func TestMatchProductByName(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "Beyaz Antep Fıstıklı Kırma Çikolata", StockCode: "CKL-01"},
		{ID: 2, Name: "Tam Yağlı Süt", StockCode: "SUT-01"},
		{ID: 3, Name: "Un"},
	}

	// Miktar eki ve büyük harf fark etmez
	p, found := matchProductByName("BEYAZ ANTEP FISTIKLI KIRMA ÇİKOLATA 1KG", products)
	require.True(t, found)
	assert.Equal(t, uint(1), p.ID)

	// Stok koduyla eşleşme
	p, found = matchProductByName("sut-01", products)
	require.True(t, found)
	assert.Equal(t, uint(2), p.ID)

	p, found = matchProductByName("UN 25 KG", products)
	require.True(t, found)
	assert.Equal(t, uint(3), p.ID)

	_, found = matchProductByName("Bilinmeyen Ürün", products)
	assert.False(t, found)
}
