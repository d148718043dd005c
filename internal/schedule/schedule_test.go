package schedule

import (
	"testing"

	"dineflow/internal/models"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// 2026-01-13 is a Tuesday (day 2), 2026-01-14 a Wednesday (day 3).
const (
	tuesday   = "2026-01-13"
	wednesday = "2026-01-14"
)

func weekdayLunchMerchant() *models.Merchant {
	return &models.Merchant{
		ID:                1,
		Code:              "DEMO",
		IsActive:          true,
		IsDineInEnabled:   true,
		IsTakeawayEnabled: true,
	}
}

func TestStoreOpenWeeklyHours(t *testing.T) {
	sched := &Schedule{
		Merchant: weekdayLunchMerchant(),
		OpeningHours: []models.OpeningHour{
			{DayOfWeek: 2, IsClosed: true},
			{DayOfWeek: 3, OpenTime: strPtr("09:00"), CloseTime: strPtr("17:00")},
		},
	}

	tests := []struct {
		name  string
		date  string
		clock string
		want  bool
	}{
		{"closed day", tuesday, "11:00", false},
		{"before opening", wednesday, "08:59", false},
		{"at opening", wednesday, "09:00", true},
		{"mid day", wednesday, "12:30", true},
		{"last minute", wednesday, "16:59", true},
		{"closing time is exclusive", wednesday, "17:00", false},
		{"after closing", wednesday, "18:00", false},
		{"no row for the day defaults open", "2026-01-15", "03:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := sched.StoreOpen(tt.date, tt.clock)
			if v.OK != tt.want {
				t.Errorf("StoreOpen(%s %s) = %v (%s), want %v", tt.date, tt.clock, v.OK, v.Reason, tt.want)
			}
		})
	}
}

func TestStoreOpen24Hours(t *testing.T) {
	sched := &Schedule{
		Merchant: weekdayLunchMerchant(),
		OpeningHours: []models.OpeningHour{
			{DayOfWeek: 3, Is24Hours: true, OpenTime: strPtr("09:00"), CloseTime: strPtr("17:00")},
		},
	}
	if v := sched.StoreOpen(wednesday, "03:00"); !v.OK {
		t.Errorf("24-hour day should be open at 03:00, got %s", v.Reason)
	}
}

func TestStoreOpenSpecialHourReplacesWeekly(t *testing.T) {
	// Weekly schedule says closed on Tuesdays, but a special-hour row for
	// 2026-01-13 opens 10:00 to 12:00. The override replaces the weekly row.
	sched := &Schedule{
		Merchant: weekdayLunchMerchant(),
		OpeningHours: []models.OpeningHour{
			{DayOfWeek: 2, IsClosed: true},
		},
		Special: &models.SpecialHour{
			Date:      tuesday,
			Name:      "Inventory Day",
			OpenTime:  strPtr("10:00"),
			CloseTime: strPtr("12:00"),
		},
	}

	tests := []struct {
		name  string
		clock string
		want  bool
	}{
		{"before special window", "09:59", false},
		{"inside special window", "11:00", true},
		{"special close is exclusive", "12:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := sched.StoreOpen(tuesday, tt.clock)
			if v.OK != tt.want {
				t.Errorf("StoreOpen(%s %s) = %v (%s), want %v", tuesday, tt.clock, v.OK, v.Reason, tt.want)
			}
		})
	}
}

func TestStoreOpenSpecialHourClosure(t *testing.T) {
	sched := &Schedule{
		Merchant: weekdayLunchMerchant(),
		OpeningHours: []models.OpeningHour{
			{DayOfWeek: 3, OpenTime: strPtr("09:00"), CloseTime: strPtr("17:00")},
		},
		Special: &models.SpecialHour{Date: wednesday, Name: "Renovation", IsClosed: true},
	}
	v := sched.StoreOpen(wednesday, "12:00")
	if v.OK {
		t.Fatal("special-hour closure should close an otherwise open day")
	}
	if v.Reason != "closed for Renovation" {
		t.Errorf("reason = %q, want %q", v.Reason, "closed for Renovation")
	}
}

func TestStoreOpenManualOverride(t *testing.T) {
	open := []models.OpeningHour{
		{DayOfWeek: 3, OpenTime: strPtr("09:00"), CloseTime: strPtr("17:00")},
	}

	t.Run("manual close wins over schedule and special hours", func(t *testing.T) {
		m := weekdayLunchMerchant()
		m.IsManualOverride = true
		m.IsOpen = false
		sched := &Schedule{
			Merchant:     m,
			OpeningHours: open,
			Special:      &models.SpecialHour{Date: wednesday, OpenTime: strPtr("00:00"), CloseTime: strPtr("23:59")},
		}
		if v := sched.StoreOpen(wednesday, "12:00"); v.OK {
			t.Error("manually closed store reported open")
		}
	})

	t.Run("manual open wins over a closed day", func(t *testing.T) {
		m := weekdayLunchMerchant()
		m.IsManualOverride = true
		m.IsOpen = true
		sched := &Schedule{
			Merchant:     m,
			OpeningHours: []models.OpeningHour{{DayOfWeek: 2, IsClosed: true}},
		}
		if v := sched.StoreOpen(tuesday, "04:00"); !v.OK {
			t.Errorf("manually opened store reported closed: %s", v.Reason)
		}
	})
}

func TestModeAvailableGlobalWindow(t *testing.T) {
	m := weekdayLunchMerchant()
	m.DineInStartTime = strPtr("11:00")
	m.DineInEndTime = strPtr("15:00")
	sched := &Schedule{Merchant: m}

	tests := []struct {
		name  string
		mode  models.OrderType
		clock string
		want  bool
	}{
		{"inside window", models.OrderTypeDineIn, "12:00", true},
		{"window end is exclusive", models.OrderTypeDineIn, "15:00", false},
		{"before window", models.OrderTypeDineIn, "10:59", false},
		{"mode without window is all day", models.OrderTypeTakeaway, "03:00", true},
		{"disabled mode", models.OrderTypeDelivery, "12:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := sched.ModeAvailable(tt.mode, wednesday, tt.clock)
			if v.OK != tt.want {
				t.Errorf("ModeAvailable(%s, %s) = %v (%s), want %v", tt.mode, tt.clock, v.OK, v.Reason, tt.want)
			}
		})
	}
}

func TestModeAvailablePerDaySchedule(t *testing.T) {
	m := weekdayLunchMerchant()
	m.UsePerDayModeSchedule = true
	// The global window must be ignored once per-day scheduling is on.
	m.DineInStartTime = strPtr("00:00")
	m.DineInEndTime = strPtr("23:59")
	sched := &Schedule{
		Merchant: m,
		ModeSchedules: []models.ModeSchedule{
			{Mode: models.OrderTypeDineIn, DayOfWeek: 3, IsActive: true, StartTime: strPtr("11:00"), EndTime: strPtr("14:00")},
			{Mode: models.OrderTypeDineIn, DayOfWeek: 2, IsActive: false},
		},
	}

	tests := []struct {
		name  string
		date  string
		clock string
		want  bool
	}{
		{"active day inside window", wednesday, "12:00", true},
		{"active day outside window", wednesday, "15:00", false},
		{"inactive day", tuesday, "12:00", false},
		{"day with no row", "2026-01-15", "12:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := sched.ModeAvailable(models.OrderTypeDineIn, tt.date, tt.clock)
			if v.OK != tt.want {
				t.Errorf("ModeAvailable(DINE_IN, %s %s) = %v (%s), want %v", tt.date, tt.clock, v.OK, v.Reason, tt.want)
			}
		})
	}
}

func TestModeAvailableSpecialHour(t *testing.T) {
	t.Run("special hour disables a mode", func(t *testing.T) {
		sched := &Schedule{
			Merchant: weekdayLunchMerchant(),
			Special: &models.SpecialHour{
				Date:            wednesday,
				Name:            "Holiday",
				IsDineInEnabled: boolPtr(false),
			},
		}
		if v := sched.ModeAvailable(models.OrderTypeDineIn, wednesday, "12:00"); v.OK {
			t.Error("mode disabled by special hour reported available")
		}
		if v := sched.ModeAvailable(models.OrderTypeTakeaway, wednesday, "12:00"); !v.OK {
			t.Errorf("untouched mode should stay available: %s", v.Reason)
		}
	})

	t.Run("special hour narrows a mode window", func(t *testing.T) {
		m := weekdayLunchMerchant()
		m.DineInStartTime = strPtr("09:00")
		m.DineInEndTime = strPtr("21:00")
		sched := &Schedule{
			Merchant: m,
			Special: &models.SpecialHour{
				Date:            wednesday,
				DineInStartTime: strPtr("10:00"),
				DineInEndTime:   strPtr("12:00"),
			},
		}
		if v := sched.ModeAvailable(models.OrderTypeDineIn, wednesday, "11:00"); !v.OK {
			t.Errorf("inside both windows should be available: %s", v.Reason)
		}
		if v := sched.ModeAvailable(models.OrderTypeDineIn, wednesday, "13:00"); v.OK {
			t.Error("outside the special window should be unavailable")
		}
	})

	t.Run("special hour never widens the base window", func(t *testing.T) {
		m := weekdayLunchMerchant()
		m.DineInStartTime = strPtr("09:00")
		m.DineInEndTime = strPtr("17:00")
		sched := &Schedule{
			Merchant: m,
			Special: &models.SpecialHour{
				Date:            wednesday,
				DineInStartTime: strPtr("09:00"),
				DineInEndTime:   strPtr("22:00"),
			},
		}
		if v := sched.ModeAvailable(models.OrderTypeDineIn, wednesday, "18:00"); v.OK {
			t.Error("base window should still cap availability")
		}
	})

	t.Run("manual store override does not enable a disabled mode", func(t *testing.T) {
		m := weekdayLunchMerchant()
		m.IsDeliveryEnabled = false
		m.IsManualOverride = true
		m.IsOpen = true
		sched := &Schedule{Merchant: m}
		if v := sched.ModeAvailable(models.OrderTypeDelivery, wednesday, "12:00"); v.OK {
			t.Error("disabled mode reported available under manual open")
		}
	})
}

func TestStoreOpenInvalidDate(t *testing.T) {
	sched := &Schedule{Merchant: weekdayLunchMerchant()}
	if v := sched.StoreOpen("13-01-2026", "12:00"); v.OK {
		t.Error("unparseable date should not report open")
	}
}
