package integrations

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mutfak-backend/internal/config"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/uom"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type CatalogImportResult struct {
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Failed    int      `json:"failed"`
	RowErrors []string `json:"row_errors"`
	Message   string   `json:"message"`
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// cell: satırın i. hücresi (kısa satırlarda boş string)
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// downloadImageFromURL: Belirli bir URL'den resim indirir
func downloadImageFromURL(imageURL string, stockCode string, savePath string) (string, error) {
	if imageURL == "" || stockCode == "" {
		return "", fmt.Errorf("resim URL veya stok kodu boş")
	}

	// Dosya yolu ve adını belirle
	fileName := fmt.Sprintf("%s.jpg", stockCode)
	filePath := filepath.Join(savePath, fileName)

	// Fotoğraf zaten varsa indirme yapma
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil
	}

	// HTTP client oluştur
	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequest("GET", imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("HTTP isteği oluşturulamadı: %v", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	// Resmi indir
	imageResp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resim indirilemedi: %v", err)
	}
	defer imageResp.Body.Close()

	if imageResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resim indirme hatası: %d", imageResp.StatusCode)
	}

	// Klasörü oluştur (yoksa)
	if err := os.MkdirAll(savePath, 0755); err != nil {
		return "", fmt.Errorf("klasör oluşturulamadı: %v", err)
	}

	// Dosyayı oluştur
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("dosya oluşturulamadı: %v", err)
	}
	defer file.Close()

	// Resmi dosyaya yaz
	_, err = io.Copy(file, imageResp.Body)
	if err != nil {
		return "", fmt.Errorf("resim yazılamadı: %v", err)
	}

	return filePath, nil
}

// resolveCategoryID: kategori adından ID bulur, yoksa oluşturur
func resolveCategoryID(name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var cat models.ProductCategory
	if err := database.DB.Where("name = ?", name).First(&cat).Error; err == nil {
		return &cat.ID, nil
	}

	cat = models.ProductCategory{Name: name}
	if err := database.DB.Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat.ID, nil
}

// POST /api/integrations/catalog/import
// Tedarikçi katalog/fiyat listesi XLSX'ini ürün kartlarına işler.
// Kolonlar: Ad | Stok Kodu | Kategori | Taban Birim | Satın Alma Birimi |
// Satın Alma Katsayısı | Satın Alma Fiyatı | Görsel URL
// Eşleşen ürün (stok kodu, yoksa ad) güncellenir, eşleşmeyen oluşturulur.
// Satır ya bütün olarak işlenir ya da hata listesine düşer.
func ImportCatalogHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
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

		// İlk satır başlık mı?
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "AD") || strings.Contains(firstCell, "ÜRÜN") || strings.Contains(firstCell, "NAME") {
				startIndex = 1
			}
		}

		result := CatalogImportResult{RowErrors: make([]string, 0)}

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			rowNum := i + 1

			name := cell(row, 0)
			if name == "" {
				continue
			}

			stockCode := cell(row, 1)
			categoryName := cell(row, 2)
			baseUnit := uom.Normalize(cell(row, 3))
			purchaseUnit := uom.Normalize(cell(row, 4))
			factorStr := cell(row, 5)
			priceStr := cell(row, 6)
			imageURL := cell(row, 7)

			if baseUnit == "" {
				baseUnit = "adet"
			}
			if purchaseUnit == "" {
				purchaseUnit = baseUnit
			}

			factor := 1.0
			if factorStr != "" {
				f, err := parseTurkishFloat(factorStr)
				if err != nil || f <= 0 {
					result.Failed++
					result.RowErrors = append(result.RowErrors, fmt.Sprintf("%d. satır: katsayı geçersiz: %s", rowNum, factorStr))
					continue
				}
				factor = f
			}

			var price float64
			if priceStr != "" {
				p, err := parseTurkishFloat(priceStr)
				if err != nil || p < 0 {
					result.Failed++
					result.RowErrors = append(result.RowErrors, fmt.Sprintf("%d. satır: fiyat geçersiz: %s", rowNum, priceStr))
					continue
				}
				price = p
			}

			categoryID, err := resolveCategoryID(categoryName)
			if err != nil {
				result.Failed++
				result.RowErrors = append(result.RowErrors, fmt.Sprintf("%d. satır: kategori oluşturulamadı: %v", rowNum, err))
				continue
			}

			// Önce stok koduna, sonra ada göre eşleştir
			var existing models.Product
			found := false
			if stockCode != "" {
				if err := database.DB.Where("stock_code = ?", stockCode).First(&existing).Error; err == nil {
					found = true
				}
			}
			if !found {
				if err := database.DB.Where("name = ?", name).First(&existing).Error; err == nil {
					found = true
				}
			}

			if found {
				updates := map[string]interface{}{
					"name":            name,
					"base_unit":       baseUnit,
					"purchase_unit":   purchaseUnit,
					"purchase_factor": factor,
				}
				if stockCode != "" {
					updates["stock_code"] = stockCode
				}
				if categoryID != nil {
					updates["category_id"] = *categoryID
				}
				if price > 0 {
					// Liste fiyatı satın alma birimi başınadır, taban birime indirgenir
					updates["last_unit_cost"] = round6(price / factor)
				}

				if err := database.DB.Model(&models.Product{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
					result.Failed++
					result.RowErrors = append(result.RowErrors, fmt.Sprintf("%d. satır: güncellenemedi: %v", rowNum, err))
					continue
				}

				if imageURL != "" && stockCode != "" {
					if path, err := downloadImageFromURL(imageURL, stockCode, cfg.ProductImagePath); err == nil {
						database.DB.Model(&models.Product{}).Where("id = ?", existing.ID).Update("image_path", path)
					} else {
						// Fotoğraf indirme hatası kritik değil
						result.RowErrors = append(result.RowErrors, fmt.Sprintf("%d. satır: fotoğraf indirilemedi: %v", rowNum, err))
					}
				}

				result.Updated++
				continue
			}

			product := models.Product{
				Name:           name,
				StockCode:      stockCode,
				CategoryID:     categoryID,
				BaseUnit:       baseUnit,
				PurchaseUnit:   purchaseUnit,
				PurchaseFactor: factor,
				IsActive:       true,
			}
			if price > 0 {
				product.LastUnitCost = round6(price / factor)
			}

			if err := database.DB.Create(&product).Error; err != nil {
				result.Failed++
				result.RowErrors = append(result.RowErrors, fmt.Sprintf("%d. satır: oluşturulamadı: %v", rowNum, err))
				continue
			}

			if imageURL != "" && stockCode != "" {
				if path, err := downloadImageFromURL(imageURL, stockCode, cfg.ProductImagePath); err == nil {
					database.DB.Model(&models.Product{}).Where("id = ?", product.ID).Update("image_path", path)
				} else {
					result.RowErrors = append(result.RowErrors, fmt.Sprintf("%d. satır: fotoğraf indirilemedi: %v", rowNum, err))
				}
			}

			result.Created++
		}

		result.Message = fmt.Sprintf("%d ürün oluşturuldu, %d güncellendi, %d satır hatalı.", result.Created, result.Updated, result.Failed)
		return c.JSON(result)
	}
}
