package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind distinguishes the two stock-tracked catalog tables.
type ItemKind string

const (
	KindMenu  ItemKind = "menu"
	KindAddon ItemKind = "addon"
)

// CatalogItem is the engine's read view of a menu item or addon item:
// enough to validate a cart line, price it, and drive the stock ledger.
// StockQty is nil for untracked items.
type CatalogItem struct {
	ID         int64
	Kind       ItemKind
	MerchantID int64
	Name       string
	Price      decimal.Decimal
	IsActive   bool
	TrackStock bool
	StockQty   *int
}

// Orderable reports whether a cart may reference the item at all. Stock is
// checked separately by the ledger.
func (c *CatalogItem) Orderable() bool {
	return c.IsActive
}

// PromotionWindow is a date-ranged promotional price for one menu item whose
// parent promotion is enabled. Rows are fetched in ascending id order so the
// resolver's first-match rule is deterministic.
type PromotionWindow struct {
	ID         int64
	MenuID     int64
	PromoPrice decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
}

// ActiveOn reports whether the window covers the given instant, at date
// granularity with both bounds inclusive.
func (w *PromotionWindow) ActiveOn(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(w.StartDate.Year(), w.StartDate.Month(), w.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(w.EndDate.Year(), w.EndDate.Month(), w.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}
