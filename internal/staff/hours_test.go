package staff

import (
	"testing"
	"time"

	"mutfak-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func mkEntry(empID uint, in, out string, breakMin int) models.TimeEntry {
	e := models.TimeEntry{EmployeeID: empID, ClockIn: mkTime(in), BreakMin: breakMin}
	if out != "" {
		o := mkTime(out)
		e.ClockOut = &o
	}
	return e
}

func TestEntryHours(t *testing.T) {
	tests := []struct {
		name  string
		entry models.TimeEntry
		want  float64
	}{
		{"8 saat molasız", mkEntry(1, "2025-12-01 09:00", "2025-12-01 17:00", 0), 8},
		{"30 dk mola", mkEntry(1, "2025-12-01 09:00", "2025-12-01 17:00", 30), 7.5},
		{"açık kayıt", mkEntry(1, "2025-12-01 09:00", "", 0), 0},
		{"kesirli saat", mkEntry(1, "2025-12-01 09:00", "2025-12-01 13:20", 0), 4.33},
		{"mola mesaiyi aşarsa sıfır", mkEntry(1, "2025-12-01 09:00", "2025-12-01 09:30", 60), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EntryHours(tt.entry), 0.001)
		})
	}
}

func TestOverlapMinutes(t *testing.T) {
	from := mkTime("2025-12-01 00:00")
	to := mkTime("2025-12-02 00:00") // 1 Aralık günü

	tests := []struct {
		name  string
		entry models.TimeEntry
		want  float64
	}{
		{"tamamen içeride", mkEntry(1, "2025-12-01 09:00", "2025-12-01 17:00", 0), 480},
		{"tamamen dışarıda", mkEntry(1, "2025-12-02 09:00", "2025-12-02 17:00", 0), 0},
		{"gece yarısını aşan (başı içeride)", mkEntry(1, "2025-12-01 22:00", "2025-12-02 02:00", 0), 120},
		{"gece yarısını aşan (sonu içeride)", mkEntry(1, "2025-11-30 22:00", "2025-12-01 02:00", 0), 120},
		{"açık kayıt sayılmaz", mkEntry(1, "2025-12-01 09:00", "", 0), 0},
		{"mola tamamen içeride düşülür", mkEntry(1, "2025-12-01 09:00", "2025-12-01 17:00", 60), 420},
		// 4 saatlik kaydın yarısı içeride, 60 dk molanın yarısı düşülür
		{"mola orantılı düşülür", mkEntry(1, "2025-12-01 22:00", "2025-12-02 02:00", 60), 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, OverlapMinutes(tt.entry, from, to), 0.001)
		})
	}
}

func TestWorkedHours(t *testing.T) {
	from := mkTime("2025-12-01 00:00")
	to := mkTime("2025-12-08 00:00") // 1 hafta

	entries := []models.TimeEntry{
		mkEntry(1, "2025-12-01 09:00", "2025-12-01 17:00", 30),
		mkEntry(1, "2025-12-02 09:00", "2025-12-02 17:00", 30),
		mkEntry(2, "2025-12-01 10:00", "2025-12-01 14:00", 0),
		mkEntry(2, "2025-12-07 22:00", "2025-12-08 02:00", 0), // yarısı dönem dışı
		mkEntry(3, "2025-12-03 09:00", "", 0),                 // açık kayıt
	}

	hours := WorkedHours(entries, from, to)

	require.Len(t, hours, 3)
	assert.InDelta(t, 15.0, hours[1], 0.001)
	assert.InDelta(t, 6.0, hours[2], 0.001)
	assert.InDelta(t, 0.0, hours[3], 0.001)
}
