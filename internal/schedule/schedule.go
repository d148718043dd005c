// Package schedule decides whether a merchant's store and fulfillment modes
// are open at an arbitrary date and time, not just "now". It is pure logic
// over pre-fetched schedule rows so reservation and scheduled-order paths
// can validate future instants inside their transaction.
package schedule

import (
	"time"

	"dineflow/internal/models"
)

// Verdict is a gate decision with a human-presentable reason.
type Verdict struct {
	OK     bool
	Reason string
}

// Schedule bundles everything the gate consults for one merchant on one
// date: the merchant flags, the weekly hours, the per-day mode schedules and
// the special-hour override for the queried date (nil when none exists).
type Schedule struct {
	Merchant      *models.Merchant
	OpeningHours  []models.OpeningHour
	ModeSchedules []models.ModeSchedule
	Special       *models.SpecialHour
}

// StoreOpen decides whether the store itself is open at date/clock.
//
// A manual override short-circuits everything: manually closed always wins,
// manually open always wins. Otherwise a special-hour row for the date
// replaces the weekly hours entirely; without one, the weekly row for the
// weekday applies. Window ends are exclusive.
func (s *Schedule) StoreOpen(date, clock string) Verdict {
	m := s.Merchant

	if m.IsManualOverride {
		if !m.IsOpen {
			return Verdict{OK: false, Reason: "manually closed"}
		}
		return Verdict{OK: true, Reason: "manually open"}
	}

	if s.Special != nil {
		sp := s.Special
		if sp.IsClosed {
			return Verdict{OK: false, Reason: closedReason(sp.Name)}
		}
		if !within(clock, sp.OpenTime, sp.CloseTime) {
			return Verdict{OK: false, Reason: "outside special opening hours"}
		}
		return Verdict{OK: true, Reason: "open per special hours"}
	}

	dow, ok := dayOfWeek(date)
	if !ok {
		return Verdict{OK: false, Reason: "invalid date"}
	}

	row := findOpeningHour(s.OpeningHours, dow)
	if row == nil {
		return Verdict{OK: true, Reason: "no schedule configured"}
	}
	if row.IsClosed {
		return Verdict{OK: false, Reason: "closed on this day"}
	}
	if row.Is24Hours {
		return Verdict{OK: true, Reason: "open 24 hours"}
	}
	if !within(clock, row.OpenTime, row.CloseTime) {
		return Verdict{OK: false, Reason: "outside opening hours"}
	}
	return Verdict{OK: true, Reason: "within opening hours"}
}

// ModeAvailable decides whether one fulfillment mode is available at
// date/clock. It is independent of StoreOpen: the mode's global enable flag
// gates first and is never bypassed by a manual store override. A
// special-hour row can only restrict a mode further, never widen it.
func (s *Schedule) ModeAvailable(mode models.OrderType, date, clock string) Verdict {
	m := s.Merchant

	if !m.ModeEnabled(mode) {
		return Verdict{OK: false, Reason: "not offered by this merchant"}
	}

	if s.Special != nil {
		enabled, _, _ := s.Special.ModeRestriction(mode)
		if enabled != nil && !*enabled {
			return Verdict{OK: false, Reason: closedReason(s.Special.Name)}
		}
	}

	if m.UsePerDayModeSchedule {
		dow, ok := dayOfWeek(date)
		if !ok {
			return Verdict{OK: false, Reason: "invalid date"}
		}
		row := findModeSchedule(s.ModeSchedules, mode, dow)
		if row == nil || !row.IsActive {
			return Verdict{OK: false, Reason: "not scheduled on this day"}
		}
		if !within(clock, row.StartTime, row.EndTime) {
			return Verdict{OK: false, Reason: "outside scheduled hours"}
		}
	} else {
		start, end := m.ModeWindow(mode)
		if !within(clock, start, end) {
			return Verdict{OK: false, Reason: "outside service hours"}
		}
	}

	if s.Special != nil {
		_, start, end := s.Special.ModeRestriction(mode)
		if !within(clock, start, end) {
			return Verdict{OK: false, Reason: "restricted by special hours"}
		}
	}

	return Verdict{OK: true, Reason: "available"}
}

// within checks start <= clock < end on zero-padded "HH:MM" strings. A nil
// or empty bound means no restriction on that side.
func within(clock string, start, end *string) bool {
	if start != nil && *start != "" && clock < *start {
		return false
	}
	if end != nil && *end != "" && clock >= *end {
		return false
	}
	return true
}

// dayOfWeek parses an ISO date as UTC so the weekday never depends on the
// host timezone. 0 is Sunday.
func dayOfWeek(date string) (int, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	return int(t.Weekday()), true
}

func findOpeningHour(rows []models.OpeningHour, dow int) *models.OpeningHour {
	for i := range rows {
		if rows[i].DayOfWeek == dow {
			return &rows[i]
		}
	}
	return nil
}

func findModeSchedule(rows []models.ModeSchedule, mode models.OrderType, dow int) *models.ModeSchedule {
	for i := range rows {
		if rows[i].Mode == mode && rows[i].DayOfWeek == dow {
			return &rows[i]
		}
	}
	return nil
}

func closedReason(name string) string {
	if name == "" {
		return "closed for a special day"
	}
	return "closed for " + name
}
