package integrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTurkishFloat(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"virgül ondalık", "140,00", 140, false},
		{"binlik nokta + virgül", "1.234,56", 1234.56, false},
		{"sadece binlik nokta", "1.250", 1250, false},
		{"TL eki ve boşluk", " 45,90 TL ", 45.9, false},
		{"tam sayı", "7", 7, false},
		{"sayı değil", "abc", 0, true},
		{"boş", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTurkishFloat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExtractQuantityAndUnit(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantQty  float64
		wantUnit string
	}{
		{"paket", "2 Paket", 2, "Paket"},
		{"adet", "25 Adet", 25, "Adet"},
		{"virgüllü miktar", "1,5 Kilogram", 1.5, "Kilogram"},
		{"bitişik yazım", "3Koli", 3, "Koli"},
		{"miktarsız", "Adet", 0, "Adet"},
		{"boş", "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, unit := extractQuantityAndUnit(tt.in)
			assert.InDelta(t, tt.wantQty, qty, 1e-9)
			assert.Equal(t, tt.wantUnit, unit)
		})
	}
}

func TestParseInvoiceTable(t *testing.T) {
	text := `Satıcı: Anadolu Gıda Paz. A.Ş.
Fatura No: GIB2025000001234
Fatura Tarihi: 12.12.2025

| Stok Kodu | Ürün | Birim Fiyat | Miktar | Kdv Oranı | Kdv Tutarı | Toplam Tutar |
| --- | --- | --- | --- | --- | --- | --- |
| TM0012 | Domates Salçası | 140,00 | 2 Paket | %10 | 28,00 | 308,00 |
| SU0005 | Ayçiçek Yağı 5 L | 1.250,50 | 1 Adet | %10 | 125,05 | 1.375,55 |
Toplam: 1.683,55
Genel Toplam: 1.683,55
`

	lines, err := parseInvoiceTable(text)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "TM0012", lines[0].StockCode)
	assert.Equal(t, "Domates Salçası", lines[0].ProductName)
	assert.InDelta(t, 140.0, lines[0].UnitPrice, 1e-9)
	assert.InDelta(t, 2.0, lines[0].Quantity, 1e-9)
	assert.Equal(t, "Paket", lines[0].QuantityUnit)
	assert.InDelta(t, 308.0, lines[0].LineTotal, 1e-9)

	assert.Equal(t, "SU0005", lines[1].StockCode)
	assert.InDelta(t, 1250.50, lines[1].UnitPrice, 1e-9)
	assert.InDelta(t, 1375.55, lines[1].LineTotal, 1e-9)
}

func TestParseInvoiceTableMultiLineName(t *testing.T) {
	// Uzun ürün adları PDF'de alt satıra taşar: pipe'sız satırlar ve stok
	// kodu boş pipe'lı satırlar önceki ürünün adına eklenir
	text := `| Stok Kodu | Ürün | Birim Fiyat | Miktar | Kdv Oranı | Kdv Tutarı | Toplam Tutar |
| --- | --- | --- | --- | --- | --- | --- |
| TM0013 | Közlenmiş Kapya | 95,00 | 4 Adet | %10 | 38,00 | 418,00 |
Biber Ezmesi
| | Cam Kavanoz 720 ml | | | | | |
`

	lines, err := parseInvoiceTable(text)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, "Közlenmiş Kapya Biber Ezmesi Cam Kavanoz 720 ml", lines[0].ProductName)
}

func TestParseInvoiceTableNoHeader(t *testing.T) {
	_, err := parseInvoiceTable("rastgele bir metin, tablo yok")
	assert.Error(t, err)
}

func TestExtractInvoiceDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fatura tarihi", "Fatura Tarihi: 12.12.2025", "12.12.2025"},
		{"sipariş tarihi saatli", "Sipariş Tarihi: 03.01.2025 18:19:58", "03.01.2025"},
		{"tarih yok", "herhangi bir metin", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractInvoiceDate(tt.in))
		})
	}
}

func TestExtractInvoiceNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fatura no", "Fatura No: GIB2025000001234", "GIB2025000001234"},
		{"kısa no", "No: A22A7ABE52039AA", "A22A7ABE52039AA"},
		{"no yok", "metinde numara bulunmuyor", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractInvoiceNumber(tt.in))
		})
	}
}
