package models

// CountSheetOrder: Şube bazlı sayım listesi sıralaması
// XLSX dosyasından yüklenen sıralama bilgisi burada saklanır
type CountSheetOrder struct {
	ID         uint `gorm:"primaryKey"`
	BranchID   uint `gorm:"not null;uniqueIndex:idx_count_sheet_branch_product"`
	Branch     Branch
	ProductID  uint `gorm:"not null;uniqueIndex:idx_count_sheet_branch_product"`
	Product    Product
	OrderIndex int `gorm:"not null"` // XLSX'teki sıra numarası (0'dan başlar)
}
