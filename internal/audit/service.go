package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
)

type LogOptions struct {
	BranchID    *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null" // Default: null JSON
	afterStr := "null"  // Default: null JSON

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		BranchID:    opts.BranchID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// UndoLog - Bir audit log'u undo et
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	// Zaten undo edilmiş mi?
	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}

	// Undo işlemini gerçekleştir
	switch log.Action {
	case models.AuditActionCreate:
		// Create ise entity'yi sil
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("entity silinemedi: %w", err)
		}

	case models.AuditActionUpdate:
		// Update ise önceki haline geri döndür
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri yüklenemedi: %w", err)
		}

	case models.AuditActionDelete:
		// Delete ise entity'yi BeforeData'dan geri oluştur
		if err := recreateEntity(log.EntityType, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri oluşturulamadı: %w", err)
		}

	default:
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}

	// Log'u işaretle
	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	// Undo işlemi için yeni bir log oluştur
	undoLog := models.AuditLog{
		BranchID:    log.BranchID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}

// deleteEntity - Entity'yi sil
// Not: Fatura kesinleştirme ve üretim tamamlama gibi stok hareketi üreten
// işlemler buradan geri alınmaz, kendi iptal akışları var
func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "expense":
		return database.DB.Delete(&models.Expense{}, "id = ?", entityID).Error
	case "waste_entry":
		// Bağlı stok çıkış hareketi de gider
		if err := database.DB.Where("ref_type = ? AND ref_id = ?", "waste_entry", entityID).Delete(&models.StockMovement{}).Error; err != nil {
			return err
		}
		return database.DB.Delete(&models.WasteEntry{}, "id = ?", entityID).Error
	case "stock_count":
		return database.DB.Delete(&models.StockCount{}, "id = ?", entityID).Error
	case "stock_movement":
		return database.DB.Delete(&models.StockMovement{}, "id = ?", entityID).Error
	case "sales_record":
		return database.DB.Delete(&models.SalesRecord{}, "id = ?", entityID).Error
	case "time_entry":
		return database.DB.Delete(&models.TimeEntry{}, "id = ?", entityID).Error
	case "tip_payout":
		return database.DB.Delete(&models.TipPayout{}, "id = ?", entityID).Error
	case "supplier_payment":
		return database.DB.Delete(&models.SupplierPayment{}, "id = ?", entityID).Error
	case "expense_payment":
		return database.DB.Delete(&models.ExpensePayment{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// recreateEntity - Silinen entity'yi geri oluştur
func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		expense.ID = 0 // Yeni entity oluştur
		return database.DB.Create(&expense).Error

	case "waste_entry":
		var entry models.WasteEntry
		if err := json.Unmarshal([]byte(dataJSON), &entry); err != nil {
			return err
		}
		entry.ID = 0
		if err := database.DB.Create(&entry).Error; err != nil {
			return err
		}
		// Stok çıkış hareketi kayıttan türetilir
		movement := models.StockMovement{
			BranchID:  entry.BranchID,
			ProductID: entry.ProductID,
			Date:      entry.Date,
			Type:      models.MovementWaste,
			Quantity:  -entry.Quantity,
			UnitCost:  entry.UnitCost,
			RefType:   "waste_entry",
			RefID:     entry.ID,
			Note:      entry.Note,
		}
		return database.DB.Create(&movement).Error

	case "stock_count":
		var count models.StockCount
		if err := json.Unmarshal([]byte(dataJSON), &count); err != nil {
			return err
		}
		count.ID = 0
		return database.DB.Create(&count).Error

	case "stock_movement":
		var movement models.StockMovement
		if err := json.Unmarshal([]byte(dataJSON), &movement); err != nil {
			return err
		}
		movement.ID = 0
		return database.DB.Create(&movement).Error

	case "sales_record":
		var record models.SalesRecord
		if err := json.Unmarshal([]byte(dataJSON), &record); err != nil {
			return err
		}
		record.ID = 0
		return database.DB.Create(&record).Error

	case "time_entry":
		var entry models.TimeEntry
		if err := json.Unmarshal([]byte(dataJSON), &entry); err != nil {
			return err
		}
		entry.ID = 0
		return database.DB.Create(&entry).Error

	case "tip_payout":
		var payout models.TipPayout
		if err := json.Unmarshal([]byte(dataJSON), &payout); err != nil {
			return err
		}
		payout.ID = 0
		return database.DB.Create(&payout).Error

	case "supplier_payment":
		var payment models.SupplierPayment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		payment.ID = 0
		return database.DB.Create(&payment).Error

	case "expense_payment":
		var payment models.ExpensePayment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		payment.ID = 0
		return database.DB.Create(&payment).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// restoreEntity - Entity'yi geri yükle (update)
func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		// ID'yi set et ve update et
		expense.ID = entityID
		return database.DB.Model(&models.Expense{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   expense.BranchID,
			"category_id": expense.CategoryID,
			"date":        expense.Date,
			"amount":      expense.Amount,
			"description": expense.Description,
		}).Error

	case "waste_entry":
		var entry models.WasteEntry
		if err := json.Unmarshal([]byte(dataJSON), &entry); err != nil {
			return err
		}
		entry.ID = entityID
		return database.DB.Model(&models.WasteEntry{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":  entry.BranchID,
			"product_id": entry.ProductID,
			"date":       entry.Date,
			"quantity":   entry.Quantity,
			"unit_cost":  entry.UnitCost,
			"total_cost": entry.TotalCost,
			"note":       entry.Note,
		}).Error

	case "stock_count":
		var count models.StockCount
		if err := json.Unmarshal([]byte(dataJSON), &count); err != nil {
			return err
		}
		count.ID = entityID
		return database.DB.Model(&models.StockCount{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":  count.BranchID,
			"product_id": count.ProductID,
			"date":       count.Date,
			"quantity":   count.Quantity,
			"note":       count.Note,
		}).Error

	case "stock_movement":
		var movement models.StockMovement
		if err := json.Unmarshal([]byte(dataJSON), &movement); err != nil {
			return err
		}
		movement.ID = entityID
		return database.DB.Model(&models.StockMovement{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":  movement.BranchID,
			"product_id": movement.ProductID,
			"date":       movement.Date,
			"type":       movement.Type,
			"quantity":   movement.Quantity,
			"unit_cost":  movement.UnitCost,
			"note":       movement.Note,
		}).Error

	case "sales_record":
		var record models.SalesRecord
		if err := json.Unmarshal([]byte(dataJSON), &record); err != nil {
			return err
		}
		record.ID = entityID
		return database.DB.Model(&models.SalesRecord{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":    record.BranchID,
			"date":         record.Date,
			"channel":      record.Channel,
			"gross_amount": record.GrossAmount,
			"tip_amount":   record.TipAmount,
			"note":         record.Note,
		}).Error

	case "time_entry":
		var entry models.TimeEntry
		if err := json.Unmarshal([]byte(dataJSON), &entry); err != nil {
			return err
		}
		entry.ID = entityID
		return database.DB.Model(&models.TimeEntry{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   entry.BranchID,
			"employee_id": entry.EmployeeID,
			"clock_in":    entry.ClockIn,
			"clock_out":   entry.ClockOut,
			"break_min":   entry.BreakMin,
			"note":        entry.Note,
		}).Error

	case "tip_payout":
		var payout models.TipPayout
		if err := json.Unmarshal([]byte(dataJSON), &payout); err != nil {
			return err
		}
		payout.ID = entityID
		return database.DB.Model(&models.TipPayout{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   payout.BranchID,
			"employee_id": payout.EmployeeID,
			"amount":      payout.Amount,
			"date":        payout.Date,
			"note":        payout.Note,
		}).Error

	case "supplier_payment":
		var payment models.SupplierPayment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		payment.ID = entityID
		return database.DB.Model(&models.SupplierPayment{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   payment.BranchID,
			"supplier_id": payment.SupplierID,
			"amount":      payment.Amount,
			"date":        payment.Date,
			"description": payment.Description,
		}).Error

	case "expense_payment":
		var payment models.ExpensePayment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		payment.ID = entityID
		return database.DB.Model(&models.ExpensePayment{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   payment.BranchID,
			"category_id": payment.CategoryID,
			"amount":      payment.Amount,
			"date":        payment.Date,
			"description": payment.Description,
		}).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}
