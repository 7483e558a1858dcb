package jobs

import (
	"fmt"
	"log"
	"time"

	"mutfak-backend/internal/config"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/integrations"
	"mutfak-backend/internal/inventory"
	"mutfak-backend/internal/models"

	"github.com/robfig/cron/v3"
)

// Start: zamanlanmış işleri config'deki cron ifadeleriyle kurar ve başlatır.
// Dönen cron nesnesi kapanışta Stop için kullanılır.
func Start(cfg *config.Config) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(cfg.SnapshotCron, RunStockSnapshot); err != nil {
		return nil, fmt.Errorf("stok fotoğrafı işi kurulamadı: %v", err)
	}
	if _, err := c.AddFunc(cfg.LowStockCron, RunLowStockSweep); err != nil {
		return nil, fmt.Errorf("kritik stok işi kurulamadı: %v", err)
	}
	if _, err := c.AddFunc(cfg.WebhookRetryCron, integrations.RetryDueDeliveries); err != nil {
		return nil, fmt.Errorf("webhook tekrar deneme işi kurulamadı: %v", err)
	}

	c.Start()
	log.Printf("Zamanlayıcı başladı: snapshot=%q low_stock=%q webhook_retry=%q",
		cfg.SnapshotCron, cfg.LowStockCron, cfg.WebhookRetryCron)
	return c, nil
}

// RunStockSnapshot: her şube için ürün bazlı stok değerlemesini günün
// tarihiyle kaydeder. Aynı gün tekrar çalışırsa eski satırların üzerine yazar.
func RunStockSnapshot() {
	start := time.Now()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	var branches []models.Branch
	if err := database.DB.Find(&branches).Error; err != nil {
		log.Printf("Stok fotoğrafı: şubeler okunamadı: %v", err)
		return
	}

	written := 0
	for _, branch := range branches {
		rows, _, err := inventory.ValuationRows(branch.ID, true)
		if err != nil {
			log.Printf("Stok fotoğrafı: %s değerlemesi alınamadı: %v", branch.Name, err)
			continue
		}

		// Tekrar çalıştırmada çift satır olmasın
		if err := database.DB.Where("branch_id = ? AND snapshot_date = ?", branch.ID, day).
			Delete(&models.StockSnapshot{}).Error; err != nil {
			log.Printf("Stok fotoğrafı: %s eski satırları silinemedi: %v", branch.Name, err)
			continue
		}

		for _, row := range rows {
			snap := models.StockSnapshot{
				BranchID:     branch.ID,
				ProductID:    row.ProductID,
				SnapshotDate: day,
				Quantity:     row.Quantity,
				UnitCost:     row.UnitCost,
				TotalValue:   row.TotalValue,
			}
			if err := database.DB.Create(&snap).Error; err != nil {
				log.Printf("Stok fotoğrafı: satır yazılamadı (%s / %s): %v", branch.Name, row.ProductName, err)
				continue
			}
			written++
		}
	}

	log.Printf("Stok fotoğrafı tamamlandı: %d şube, %d satır (%s)",
		len(branches), written, time.Since(start).Round(time.Millisecond))
}

// RunLowStockSweep: kritik seviyenin altındaki ürünler için şube başına tek
// stock.low olayı yayınlar. Ürün listesi olayın data alanında gider.
func RunLowStockSweep() {
	start := time.Now()

	var branches []models.Branch
	if err := database.DB.Find(&branches).Error; err != nil {
		log.Printf("Kritik stok taraması: şubeler okunamadı: %v", err)
		return
	}

	fired := 0
	for _, branch := range branches {
		rows, err := inventory.LowStockProducts(branch.ID)
		if err != nil {
			log.Printf("Kritik stok taraması: %s okunamadı: %v", branch.Name, err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		integrations.Emit(branch.ID, models.WebhookStockLow, map[string]interface{}{
			"count":    len(rows),
			"products": rows,
		})
		fired++
		log.Printf("Kritik stok: %s şubesinde %d ürün seviyenin altında", branch.Name, len(rows))
	}

	log.Printf("Kritik stok taraması tamamlandı: %d şube, %d olay (%s)",
		len(branches), fired, time.Since(start).Round(time.Millisecond))
}
