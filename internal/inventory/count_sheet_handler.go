package inventory

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// normalizeTurkish: Türkçe karakterleri ASCII karşılıklarına çevirir
// Örn: "CADI SÜTLÜ ÇİKOLATA" -> "cadi sutlu cikolata"
func normalizeTurkish(s string) string {
	replacements := map[rune]string{
		'ç': "c", 'Ç': "C",
		'ğ': "g", 'Ğ': "G",
		'ı': "i", 'İ': "I",
		'ö': "o", 'Ö': "O",
		'ş': "s", 'Ş': "S",
		'ü': "u", 'Ü': "U",
	}

	var result strings.Builder
	for _, r := range s {
		if replacement, ok := replacements[r]; ok {
			result.WriteString(replacement)
		} else {
			result.WriteRune(r)
		}
	}
	return strings.ToLower(result.String())
}

// normalizeProductName: Ürün adını normalleştirir - miktar bilgilerini (1KG, 500GR vb.) kaldırır
// Örn: "BEYAZ ANTEP FISTIKLI KIRMA ÇİKOLATA 1KG" -> "beyaz antep fistikli kirma cikolata"
func normalizeProductName(s string) string {
	// Önce Türkçe karakterleri normalize et
	normalized := normalizeTurkish(s)

	// Sonundaki miktar bilgilerini kaldır
	// Örnekler: " 1KG", " 500GR", " 2.5LT", " 250ML", " 1 G", " 500 L"
	quantityPattern := `\s+[\d.,]+?\s*(?:kg|gr|lt|ml|g|l)\s*$`
	re := regexp.MustCompile(quantityPattern)
	normalized = re.ReplaceAllString(normalized, "")

	// Kelime kelime temizlik: sadece sayı içeren kelimeleri ve birimleri kaldır
	words := strings.Fields(normalized)
	var cleanedWords []string
	for _, word := range words {
		if isNumericOrUnit(word) {
			continue
		}
		cleanedWords = append(cleanedWords, word)
	}

	result := strings.Join(cleanedWords, " ")
	return strings.TrimSpace(result)
}

// isNumericOrUnit: Kelime sadece sayı veya birim (kg/gr/lt/ml/g/l) mi
func isNumericOrUnit(word string) bool {
	wordLower := strings.ToLower(strings.TrimSpace(word))

	// Tamamen sayı mı? (örn: "1", "500", "2.5")
	if matched, _ := regexp.MatchString(`^[\d.,]+$`, wordLower); matched {
		return true
	}

	// Sayı + birim mi? (örn: "1kg", "500gr", "2.5lt")
	unitPattern := `^[\d.,]+\s*(?:kg|gr|lt|ml|g|l)$`
	if matched, _ := regexp.MatchString(unitPattern, wordLower); matched {
		return true
	}

	// Sadece birim mi?
	units := []string{"kg", "gr", "lt", "ml", "g", "l"}
	for _, unit := range units {
		if wordLower == unit {
			return true
		}
	}

	return false
}

// matchProductByName: Normalize edilmiş ada veya stok koduna göre ürün bulur
func matchProductByName(raw string, products []models.Product) (models.Product, bool) {
	normalizedName := normalizeProductName(raw)
	normalizedRaw := normalizeTurkish(raw)

	for _, p := range products {
		if normalizeProductName(p.Name) == normalizedName {
			return p, true
		}
		// Stok kodunda genelde miktar bilgisi olmaz
		if p.StockCode != "" && normalizeTurkish(p.StockCode) == normalizedRaw {
			return p, true
		}
	}
	return models.Product{}, false
}

// POST /api/stock/count-sheet/upload
// XLSX dosyasını yükler ve sayım listesi sıralamasını kaydeder
func UploadCountSheetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		// İlk satır başlık mı? ("ÜRÜN ADI", "PRODUCT" gibi)
		skipFirstRow := false
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "ÜRÜN") || strings.Contains(firstCell, "PRODUCT") {
				skipFirstRow = true
			}
		}

		// Ürünleri bir kez yükle, satır satır eşleştir
		var products []models.Product
		if err := database.DB.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler yüklenemedi")
		}

		// Eski sıralamayı sil (bu şube için)
		if err := database.DB.Where("branch_id = ?", branchID).Delete(&models.CountSheetOrder{}).Error; err != nil {
			log.Printf("Eski sıralama silinirken hata: %v", err)
			// Devam et, kritik değil
		}

		orderIndex := 0
		matchedCount := 0
		unmatchedProducts := make([]string, 0)

		startIndex := 0
		if skipFirstRow {
			startIndex = 1
		}

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) == 0 {
				continue
			}

			productName := strings.TrimSpace(row[0])
			if productName == "" {
				continue
			}

			product, found := matchProductByName(productName, products)
			if !found {
				unmatchedProducts = append(unmatchedProducts, productName)
				continue
			}

			order := models.CountSheetOrder{
				BranchID:   branchID,
				ProductID:  product.ID,
				OrderIndex: orderIndex,
			}
			if err := database.DB.Create(&order).Error; err != nil {
				log.Printf("Sıralama kaydı oluşturulurken hata (product_id=%d): %v", product.ID, err)
				continue
			}

			orderIndex++
			matchedCount++
		}

		return c.JSON(fiber.Map{
			"success":            true,
			"matched_count":      matchedCount,
			"unmatched_products": unmatchedProducts,
			"message":            fmt.Sprintf("%d ürün sıralaması kaydedildi. %d ürün eşleşmedi.", matchedCount, len(unmatchedProducts)),
		})
	}
}

// GET /api/stock/count-sheet/export
// Sayım listesi XLSX: sıralama uygulanmış, son sayım ve sistem stoğu dolu,
// sayılan kolonu elle doldurulmak üzere boş
func ExportCountSheetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var products []models.Product
		if err := database.DB.Where("is_active = ?", true).Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		orderMap := make(map[uint]int)
		var sheetOrders []models.CountSheetOrder
		if err := database.DB.Where("branch_id = ?", branchID).Find(&sheetOrders).Error; err == nil {
			for _, order := range sheetOrders {
				orderMap[order.ProductID] = order.OrderIndex
			}
		}

		sort.Slice(products, func(i, j int) bool {
			iOrder, iHas := orderMap[products[i].ID]
			jOrder, jHas := orderMap[products[j].ID]
			if iHas && jHas {
				return iOrder < jOrder
			}
			if iHas {
				return true
			}
			if jHas {
				return false
			}
			return products[i].Name < products[j].Name
		})

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Sayım"
		f.SetSheetName("Sheet1", sheet)

		today := time.Now().Format("2006-01-02")
		f.SetCellValue(sheet, "A1", fmt.Sprintf("Stok Sayım Listesi - %s", today))
		headers := []string{"Sıra", "Ürün", "Stok Kodu", "Birim", "Sistem Stoğu", "Sayılan"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 3)
			f.SetCellValue(sheet, cell, h)
		}

		rowIdx := 4
		for i, p := range products {
			qty, _ := CurrentStock(branchID, p.ID)
			f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx), i+1)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", rowIdx), p.Name)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", rowIdx), p.StockCode)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowIdx), p.BaseUnit)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", rowIdx), qty)
			// F kolonu (Sayılan) elle doldurulur
			rowIdx++
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		filename := fmt.Sprintf("sayim_listesi_%s.xlsx", today)
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
