package group

import (
	"github.com/shopspring/decimal"

	"dineflow/internal/models"
	"dineflow/internal/pricing"
)

// Contribution is one participant's slice of the merged cart, measured by
// the subtotal of the order lines they contributed.
type Contribution struct {
	ParticipantID int64
	Name          string
	Subtotal      decimal.Decimal
}

// ComputeBillSplit distributes each fee component of the assembled order
// across participants in proportion to their contributed subtotal. Every
// share is rounded to cents and the last participant absorbs the rounding
// residual, so per-component shares always sum exactly to the order's
// component.
func ComputeBillSplit(o *models.Order, contributions []Contribution) *models.BillSplit {
	split := &models.BillSplit{OrderTotal: o.TotalAmount}
	if len(contributions) == 0 {
		return split
	}

	taxShares := splitComponent(o.TaxAmount, o.Subtotal, contributions)
	serviceShares := splitComponent(o.ServiceChargeAmount, o.Subtotal, contributions)
	packagingShares := splitComponent(o.PackagingFeeAmount, o.Subtotal, contributions)
	deliveryShares := splitComponent(o.DeliveryFeeAmount, o.Subtotal, contributions)

	for i, c := range contributions {
		share := models.ParticipantShare{
			ParticipantID:  c.ParticipantID,
			Name:           c.Name,
			Subtotal:       c.Subtotal,
			TaxShare:       taxShares[i],
			ServiceShare:   serviceShares[i],
			PackagingShare: packagingShares[i],
			DeliveryShare:  deliveryShares[i],
		}
		share.TotalShare = c.Subtotal.
			Add(share.TaxShare).Add(share.ServiceShare).
			Add(share.PackagingShare).Add(share.DeliveryShare)
		split.Shares = append(split.Shares, share)
	}
	return split
}

// splitComponent allocates one fee component proportionally. With a zero
// subtotal there is no proportion to follow, so the whole component lands on
// the last participant, consistent with the residual rule.
func splitComponent(component, subtotal decimal.Decimal, contributions []Contribution) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(contributions))
	last := len(contributions) - 1

	allocated := decimal.Zero
	for i, c := range contributions {
		if i == last {
			break
		}
		if subtotal.IsZero() {
			shares[i] = decimal.Zero
			continue
		}
		shares[i] = pricing.Round2(component.Mul(c.Subtotal).Div(subtotal))
		allocated = allocated.Add(shares[i])
	}
	shares[last] = component.Sub(allocated)
	return shares
}
