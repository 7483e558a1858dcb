package integrations

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gen2brain/go-fitz"
	"github.com/gofiber/fiber/v2"
)

// ParsedInvoiceLine: PDF'den çıkarılan fatura satırı
type ParsedInvoiceLine struct {
	StockCode          string  `json:"stock_code"`    // Stok Kodu (örn: TM0012)
	ProductName        string  `json:"product_name"`  // Ürün adı
	UnitPrice          float64 `json:"unit_price"`    // Birim fiyat (140.00)
	Quantity           float64 `json:"quantity"`      // Miktar (2)
	QuantityUnit       string  `json:"quantity_unit"` // Miktar birimi (Paket, Adet, Kilogram)
	LineTotal          float64 `json:"line_total"`    // Satır tutarı (336.00)
	MatchedProductID   *uint   `json:"matched_product_id"`   // Eşleşen ürün ID (nil ise eşleşme yok)
	MatchedProductName string  `json:"matched_product_name"` // Eşleşen ürün adı
}

// ParseInvoiceResponse: PDF parsing sonucu. Onaylanan çıktı taslak fatura
// oluşturma isteğine dönüştürülür, burada stok hareketi üretilmez.
type ParseInvoiceResponse struct {
	Lines          []ParsedInvoiceLine `json:"lines"`
	Date           string              `json:"date"`           // Fatura tarihi (varsa)
	InvoiceNumber  string              `json:"invoice_number"` // Fatura numarası (varsa)
	UnmatchedCount int                 `json:"unmatched_count"`
}

// parseTurkishFloat: Türkçe formatındaki sayıyı float'a çevir (1.234,56 -> 1234.56)
func parseTurkishFloat(s string) (float64, error) {
	// Boşlukları ve "TL" gibi ekleri temizle
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "TL", "")
	s = strings.TrimSpace(s)

	// Binlik ayırıcı noktaları kaldır
	s = strings.ReplaceAll(s, ".", "")

	// Virgülü noktaya çevir (ondalık ayırıcı)
	s = strings.ReplaceAll(s, ",", ".")

	return strconv.ParseFloat(s, 64)
}

// extractQuantityAndUnit: "2 Paket", "1 Adet", "25 Adet", "1 Kilogram" gibi string'den miktar ve birim çıkar
func extractQuantityAndUnit(s string) (float64, string) {
	s = strings.TrimSpace(s)

	// Sayıyı bul
	var quantityStr strings.Builder
	var unitStr strings.Builder
	inQuantity := true

	for _, r := range s {
		if inQuantity && (unicode.IsDigit(r) || r == '.' || r == ',') {
			quantityStr.WriteRune(r)
		} else {
			inQuantity = false
			if !unicode.IsSpace(r) {
				unitStr.WriteRune(r)
			}
		}
	}

	quantityText := quantityStr.String()
	unitText := strings.TrimSpace(unitStr.String())

	// Türkçe formatındaki sayıyı parse et
	quantityText = strings.ReplaceAll(quantityText, ",", ".")
	quantity, err := strconv.ParseFloat(quantityText, 64)
	if err != nil {
		return 0, unitText
	}

	return quantity, unitText
}

// parseInvoiceTable: fatura text'inden tablo satırlarını çıkar.
// Beklenen format: | Stok Kodu | Ürün | Birim Fiyat | Miktar | Kdv Oranı | Kdv Tutarı | Toplam Tutar |
func parseInvoiceTable(text string) ([]ParsedInvoiceLine, error) {
	var parsed []ParsedInvoiceLine

	lines := strings.Split(text, "\n")

	// Tablo başlığını bul
	tableStartIdx := -1
	for i, line := range lines {
		if strings.Contains(line, "Stok Kodu") && strings.Contains(line, "Ürün") {
			tableStartIdx = i
			break
		}
	}

	if tableStartIdx == -1 {
		return nil, fmt.Errorf("tablo başlığı bulunamadı")
	}

	// Tablo satırlarını işle (başlıktan sonraki satırlar)
	for i := tableStartIdx + 2; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		// Boş satırları ve toplam satırlarını atla
		if line == "" || strings.Contains(line, "Toplam:") || strings.Contains(line, "KDV:") || strings.Contains(line, "Genel Toplam:") {
			continue
		}

		if !strings.Contains(line, "|") {
			// Pipe içermeyen satır önceki satırın devamı olabilir (çok satırlı ürün adları)
			if len(parsed) > 0 {
				lastLine := &parsed[len(parsed)-1]
				if lastLine.ProductName != "" {
					lastLine.ProductName += " " + line
				}
			}
			continue
		}

		// Pipe karakterleriyle ayır
		parts := strings.Split(line, "|")
		if len(parts) < 8 { // En az 8 parça olmalı (boş başlangıç + 7 kolon + boş bitiş)
			// Çok satırlı ürün adları için özel işlem
			if len(parsed) > 0 {
				lastLine := &parsed[len(parsed)-1]
				if lastLine.ProductName != "" {
					cleaned := strings.TrimSpace(line)
					cleaned = strings.Trim(cleaned, "|")
					if cleaned != "" {
						lastLine.ProductName += " " + cleaned
					}
				}
			}
			continue
		}

		// Kolonları çıkar (indeks 1'den başlar, 0 boş)
		stockCode := strings.TrimSpace(parts[1])
		productName := strings.TrimSpace(parts[2])
		unitPriceStr := strings.TrimSpace(parts[3])
		quantityStr := strings.TrimSpace(parts[4])
		lineTotalStr := strings.TrimSpace(parts[7])

		// Boş satırları atla
		if stockCode == "" && productName == "" {
			continue
		}

		// Stok kodu yoksa bu satır muhtemelen önceki satırın devamı
		if stockCode == "" {
			if len(parsed) > 0 {
				lastLine := &parsed[len(parsed)-1]
				if productName != "" {
					lastLine.ProductName += " " + productName
				}
			}
			continue
		}

		unitPrice, err := parseTurkishFloat(unitPriceStr)
		if err != nil {
			continue // Parse edilemezse atla
		}

		quantity, quantityUnit := extractQuantityAndUnit(quantityStr)

		lineTotal, err := parseTurkishFloat(lineTotalStr)
		if err != nil {
			continue // Parse edilemezse atla
		}

		parsed = append(parsed, ParsedInvoiceLine{
			StockCode:    stockCode,
			ProductName:  productName,
			UnitPrice:    unitPrice,
			Quantity:     quantity,
			QuantityUnit: quantityUnit,
			LineTotal:    lineTotal,
		})
	}

	return parsed, nil
}

// matchProduct: Ürün adını ve stok kodunu sistemdeki ürünlerle eşleştir
func matchProduct(productName string, stockCode string) (*models.Product, error) {
	productName = strings.TrimSpace(productName)
	stockCode = strings.TrimSpace(stockCode)

	// Önce stok koduna göre eşleştir (en güvenilir yöntem)
	if stockCode != "" {
		var product models.Product
		if err := database.DB.Where("stock_code = ?", stockCode).First(&product).Error; err == nil {
			return &product, nil
		}
	}

	// Stok kodu eşleşmediyse veya yoksa, isme göre eşleştir
	if productName == "" {
		return nil, nil
	}

	var products []models.Product
	if err := database.DB.Find(&products).Error; err != nil {
		return nil, err
	}

	// Normalize: küçük harfe çevir, Türkçe karakterleri düzelt
	normalize := func(s string) string {
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "ı", "i")
		s = strings.ReplaceAll(s, "ğ", "g")
		s = strings.ReplaceAll(s, "ü", "u")
		s = strings.ReplaceAll(s, "ş", "s")
		s = strings.ReplaceAll(s, "ö", "o")
		s = strings.ReplaceAll(s, "ç", "c")
		return s
	}

	normalizedProductName := normalize(productName)

	// Önce tam eşleşme ara
	for _, p := range products {
		normalizedPName := normalize(p.Name)
		if normalizedPName == normalizedProductName {
			return &p, nil
		}
	}

	// Tam eşleşme yoksa, kısmi eşleşme ara (en uzun ortak substring)
	bestMatch := (*models.Product)(nil)
	bestScore := 0

	for _, p := range products {
		normalizedPName := normalize(p.Name)

		// Faturadaki ürün adı sistemdeki adı içeriyorsa veya tam tersi
		if strings.Contains(normalizedProductName, normalizedPName) || strings.Contains(normalizedPName, normalizedProductName) {
			score := len(normalizedPName)
			if score > bestScore {
				bestScore = score
				bestMatch = &p
			}
		}
	}

	// En az 5 karakterlik eşleşme olsun
	if bestScore >= 5 {
		return bestMatch, nil
	}

	return nil, nil // Eşleşme bulunamadı
}

// extractInvoiceDate: text'inden fatura tarihini çıkar
func extractInvoiceDate(text string) string {
	// "Fatura Tarihi: 12.12.2025" veya "Sipariş Tarihi: 12.12.2025 18:19:58" formatını bul
	re := regexp.MustCompile(`(?:Fatura|Sipariş) Tarihi:\s*(\d{2}\.\d{2}\.\d{4})`)
	matches := re.FindStringSubmatch(text)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// extractInvoiceNumber: text'inden fatura numarasını çıkar
func extractInvoiceNumber(text string) string {
	// "Fatura No: GIB2025000001234" veya "No: A22A7ABE52039AA" formatını bul
	re := regexp.MustCompile(`(?:Fatura )?No:\s*([A-Z0-9]+)`)
	matches := re.FindStringSubmatch(text)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// ParseInvoiceText: fatura text'ini parse edip satırları sistem ürünleriyle eşleştirir
func ParseInvoiceText(text string) (*ParseInvoiceResponse, error) {
	date := extractInvoiceDate(text)
	number := extractInvoiceNumber(text)

	lines, err := parseInvoiceTable(text)
	if err != nil {
		return nil, fmt.Errorf("tablo parse edilemedi: %v", err)
	}

	unmatched := 0
	for i := range lines {
		matched, err := matchProduct(lines[i].ProductName, lines[i].StockCode)
		if err == nil && matched != nil {
			lines[i].MatchedProductID = &matched.ID
			lines[i].MatchedProductName = matched.Name
		} else {
			unmatched++
		}
	}

	return &ParseInvoiceResponse{
		Lines:          lines,
		Date:           date,
		InvoiceNumber:  number,
		UnmatchedCount: unmatched,
	}, nil
}

// extractPDFText: PDF sayfalarının text'ini go-fitz ile çıkarır
func extractPDFText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("PDF açılamadı: %v", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("%d. sayfa okunamadı: %v", i+1, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// POST /api/integrations/invoices/parse-pdf
// Multipart "file" alanındaki fatura PDF'ini text'e çevirip parse eder
func ParseInvoicePDFHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "PDF dosyası 'file' alanında gönderilmelidir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya açılamadı")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya okunamadı")
		}

		log.Printf("Fatura PDF parsing başladı: %s (%d byte)", fileHeader.Filename, len(data))

		text, err := extractPDFText(data)
		if err != nil {
			log.Printf("PDF text extraction error: %v", err)
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("PDF okunamadı: %v", err))
		}

		result, err := ParseInvoiceText(text)
		if err != nil {
			log.Printf("Fatura parse error: %v", err)
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Fatura parse edilemedi: %v", err))
		}

		log.Printf("Fatura parse başarılı, %d satır bulundu (%d eşleşmeyen)", len(result.Lines), result.UnmatchedCount)
		return c.JSON(result)
	}
}

// POST /api/integrations/invoices/parse-text
// Önceden çıkarılmış fatura text'ini JSON body'de "text" alanı olarak kabul eder
func ParseInvoiceTextHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil {
			log.Printf("Fatura parse request body parse error: %v", err)
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi. 'text' field'ı gönderilmelidir.")
		}

		if body.Text == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura text'i boş olamaz")
		}

		result, err := ParseInvoiceText(body.Text)
		if err != nil {
			log.Printf("Fatura parse error: %v", err)
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Fatura parse edilemedi: %v", err))
		}

		log.Printf("Fatura parse başarılı, %d satır bulundu (%d eşleşmeyen)", len(result.Lines), result.UnmatchedCount)
		return c.JSON(result)
	}
}
