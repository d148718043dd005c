package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant carries the per-tenant configuration the engine reads: fee policy,
// fulfillment-mode flags, schedule windows and the manual open/closed
// override. The engine never writes to it.
type Merchant struct {
	ID       int64
	Code     string
	Name     string
	Currency string
	Timezone string
	IsActive bool

	EnableTax               bool
	TaxPercentage           decimal.Decimal
	EnableServiceCharge     bool
	ServiceChargePercentage decimal.Decimal
	EnablePackagingFee      bool
	PackagingFeeAmount      decimal.Decimal

	IsDineInEnabled   bool
	IsTakeawayEnabled bool
	IsDeliveryEnabled bool

	// Global per-mode windows ("HH:MM", nil means no restriction). Consulted
	// only when per-day mode scheduling is disabled.
	DineInStartTime   *string
	DineInEndTime     *string
	TakeawayStartTime *string
	TakeawayEndTime   *string
	DeliveryStartTime *string
	DeliveryEndTime   *string

	UsePerDayModeSchedule bool
	IsManualOverride      bool
	IsOpen                bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ModeEnabled reports whether the merchant has the given order type switched
// on at all, before any schedule is consulted.
func (m *Merchant) ModeEnabled(orderType OrderType) bool {
	switch orderType {
	case OrderTypeDineIn:
		return m.IsDineInEnabled
	case OrderTypeTakeaway:
		return m.IsTakeawayEnabled
	case OrderTypeDelivery:
		return m.IsDeliveryEnabled
	default:
		return false
	}
}

// ModeWindow returns the merchant's global start/end window for the given
// order type. Either bound may be nil.
func (m *Merchant) ModeWindow(orderType OrderType) (start, end *string) {
	switch orderType {
	case OrderTypeDineIn:
		return m.DineInStartTime, m.DineInEndTime
	case OrderTypeTakeaway:
		return m.TakeawayStartTime, m.TakeawayEndTime
	case OrderTypeDelivery:
		return m.DeliveryStartTime, m.DeliveryEndTime
	default:
		return nil, nil
	}
}

// Location resolves the merchant's IANA timezone, falling back to UTC when
// the stored name does not load.
func (m *Merchant) Location() *time.Location {
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OpeningHour is one weekly schedule row. DayOfWeek runs 0 (Sunday) to 6.
type OpeningHour struct {
	MerchantID int64
	DayOfWeek  int
	IsClosed   bool
	Is24Hours  bool
	OpenTime   *string
	CloseTime  *string
}

// SpecialHour is a date-specific override. When a row exists for a date it
// replaces the weekly opening hours for that date entirely, and its per-mode
// fields may further restrict individual fulfillment modes.
type SpecialHour struct {
	MerchantID int64
	Date       string
	Name       string
	IsClosed   bool
	OpenTime   *string
	CloseTime  *string

	IsDineInEnabled   *bool
	IsTakeawayEnabled *bool
	IsDeliveryEnabled *bool
	DineInStartTime   *string
	DineInEndTime     *string
	TakeawayStartTime *string
	TakeawayEndTime   *string
	DeliveryStartTime *string
	DeliveryEndTime   *string
}

// ModeRestriction returns the special hour's enable flag and window for the
// given order type. A nil flag means the override does not touch that mode.
func (s *SpecialHour) ModeRestriction(orderType OrderType) (enabled *bool, start, end *string) {
	switch orderType {
	case OrderTypeDineIn:
		return s.IsDineInEnabled, s.DineInStartTime, s.DineInEndTime
	case OrderTypeTakeaway:
		return s.IsTakeawayEnabled, s.TakeawayStartTime, s.TakeawayEndTime
	case OrderTypeDelivery:
		return s.IsDeliveryEnabled, s.DeliveryStartTime, s.DeliveryEndTime
	default:
		return nil, nil, nil
	}
}

// ModeSchedule is one per-day window for a fulfillment mode, used when the
// merchant runs per-day mode scheduling.
type ModeSchedule struct {
	MerchantID int64
	Mode       OrderType
	DayOfWeek  int
	IsActive   bool
	StartTime  *string
	EndTime    *string
}
