// Package pricing resolves effective unit prices and computes the
// merchant-configured fee components of an order. All money math runs on
// decimals and every component is rounded to 2 places on its own, never only
// the grand total.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"dineflow/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// EffectivePrice returns the unit price of a menu item at the given instant:
// the promotional price when an active window covers it, the list price
// otherwise. Windows must be pre-filtered to enabled promotions and sorted by
// ascending id; when more than one covers the instant the first wins. Addon
// items never carry windows, so their list price is always effective.
func EffectivePrice(listPrice decimal.Decimal, menuID int64, windows []models.PromotionWindow, on time.Time) decimal.Decimal {
	for i := range windows {
		w := &windows[i]
		if w.MenuID == menuID && w.ActiveOn(on) {
			return w.PromoPrice
		}
	}
	return listPrice
}

// Breakdown is the fee decomposition of one order. Total is the sum of the
// other five fields, each already rounded.
type Breakdown struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	PackagingFee  decimal.Decimal
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
}

// ComputeFees applies the merchant's fee configuration to a subtotal. The
// packaging fee is flat and charged only on takeaway orders. The delivery fee
// comes from the caller and is passed through, rounded at the boundary.
func ComputeFees(subtotal decimal.Decimal, m *models.Merchant, orderType models.OrderType, deliveryFee decimal.Decimal) Breakdown {
	b := Breakdown{Subtotal: Round2(subtotal)}

	if m.EnableTax {
		b.Tax = Round2(b.Subtotal.Mul(m.TaxPercentage).Div(hundred))
	}
	if m.EnableServiceCharge {
		b.ServiceCharge = Round2(b.Subtotal.Mul(m.ServiceChargePercentage).Div(hundred))
	}
	if m.EnablePackagingFee && orderType == models.OrderTypeTakeaway {
		b.PackagingFee = Round2(m.PackagingFeeAmount)
	}
	if orderType == models.OrderTypeDelivery {
		b.DeliveryFee = Round2(deliveryFee)
	}

	b.Total = b.Subtotal.
		Add(b.Tax).
		Add(b.ServiceCharge).
		Add(b.PackagingFee).
		Add(b.DeliveryFee)
	return b
}
