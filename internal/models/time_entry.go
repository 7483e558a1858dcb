package models

import "time"

type TimeEntrySource string

const (
	TimeEntrySourcePIN    TimeEntrySource = "pin"    // terminalden PIN ile
	TimeEntrySourceManual TimeEntrySource = "manual" // yönetici tarafından elle
)

// TimeEntry: Mesai kaydı. ClockOut nil ise personel halen içeride demektir.
type TimeEntry struct {
	ID         uint `gorm:"primaryKey"`
	BranchID   uint `gorm:"index;not null"`
	Branch     Branch
	EmployeeID uint `gorm:"index;not null"`
	Employee   Employee
	ClockIn    time.Time  `gorm:"index;not null"`
	ClockOut   *time.Time `gorm:"index"`
	BreakMin   int        `gorm:"not null;default:0"` // mola süresi (dakika)
	Source     TimeEntrySource `gorm:"size:10;not null;default:'pin'"`
	Note       string     `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
