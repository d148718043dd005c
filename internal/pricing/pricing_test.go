package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dineflow/internal/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestEffectivePrice(t *testing.T) {
	windows := []models.PromotionWindow{
		{ID: 1, MenuID: 10, PromoPrice: d("8.50"), StartDate: date("2026-01-01"), EndDate: date("2026-01-31")},
		{ID: 2, MenuID: 10, PromoPrice: d("7.00"), StartDate: date("2026-01-10"), EndDate: date("2026-01-20")},
		{ID: 3, MenuID: 11, PromoPrice: d("5.00"), StartDate: date("2026-02-01"), EndDate: date("2026-02-07")},
	}

	tests := []struct {
		name   string
		menuID int64
		on     string
		want   string
	}{
		{"no window for item", 12, "2026-01-15", "12.00"},
		{"window not yet started", 11, "2026-01-15", "12.00"},
		{"active window", 11, "2026-02-03", "5.00"},
		{"start date inclusive", 11, "2026-02-01", "5.00"},
		{"end date inclusive", 11, "2026-02-07", "5.00"},
		{"day after end", 11, "2026-02-08", "12.00"},
		{"overlapping windows take first by id", 10, "2026-01-15", "8.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectivePrice(d("12.00"), tt.menuID, windows, date(tt.on))
			if !got.Equal(d(tt.want)) {
				t.Errorf("EffectivePrice(menu %d on %s) = %s, want %s", tt.menuID, tt.on, got, tt.want)
			}
		})
	}
}

func TestComputeFees(t *testing.T) {
	tests := []struct {
		name        string
		merchant    models.Merchant
		orderType   models.OrderType
		subtotal    string
		deliveryFee string
		want        Breakdown
	}{
		{
			name:        "delivery with tax only",
			merchant:    models.Merchant{EnableTax: true, TaxPercentage: d("10")},
			orderType:   models.OrderTypeDelivery,
			subtotal:    "16.00",
			deliveryFee: "4.00",
			want: Breakdown{
				Subtotal:    d("16.00"),
				Tax:         d("1.60"),
				DeliveryFee: d("4.00"),
				Total:       d("21.60"),
			},
		},
		{
			name: "takeaway picks up the packaging fee",
			merchant: models.Merchant{
				EnableTax: true, TaxPercentage: d("10"),
				EnablePackagingFee: true, PackagingFeeAmount: d("2.00"),
			},
			orderType: models.OrderTypeTakeaway,
			subtotal:  "20.00",
			want: Breakdown{
				Subtotal:     d("20.00"),
				Tax:          d("2.00"),
				PackagingFee: d("2.00"),
				Total:        d("24.00"),
			},
		},
		{
			name: "dine-in skips packaging fee",
			merchant: models.Merchant{
				EnableTax: true, TaxPercentage: d("10"),
				EnablePackagingFee: true, PackagingFeeAmount: d("2.00"),
			},
			orderType: models.OrderTypeDineIn,
			subtotal:  "20.00",
			want: Breakdown{
				Subtotal: d("20.00"),
				Tax:      d("2.00"),
				Total:    d("22.00"),
			},
		},
		{
			name:      "all fees disabled",
			merchant:  models.Merchant{},
			orderType: models.OrderTypeDineIn,
			subtotal:  "9.99",
			want: Breakdown{
				Subtotal: d("9.99"),
				Total:    d("9.99"),
			},
		},
		{
			name: "components round independently",
			merchant: models.Merchant{
				EnableTax: true, TaxPercentage: d("8.25"),
				EnableServiceCharge: true, ServiceChargePercentage: d("5"),
			},
			orderType: models.OrderTypeDineIn,
			subtotal:  "10.05",
			// 10.05 * 8.25% = 0.829125 -> 0.83, 10.05 * 5% = 0.5025 -> 0.50
			want: Breakdown{
				Subtotal:      d("10.05"),
				Tax:           d("0.83"),
				ServiceCharge: d("0.50"),
				Total:         d("11.38"),
			},
		},
		{
			name:      "delivery fee ignored outside delivery",
			merchant:  models.Merchant{},
			orderType: models.OrderTypeTakeaway,
			subtotal:  "10.00",
			deliveryFee: "4.00",
			want: Breakdown{
				Subtotal: d("10.00"),
				Total:    d("10.00"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deliveryFee := decimal.Zero
			if tt.deliveryFee != "" {
				deliveryFee = d(tt.deliveryFee)
			}
			got := ComputeFees(d(tt.subtotal), &tt.merchant, tt.orderType, deliveryFee)

			checks := []struct {
				field string
				got   decimal.Decimal
				want  decimal.Decimal
			}{
				{"subtotal", got.Subtotal, tt.want.Subtotal},
				{"tax", got.Tax, tt.want.Tax},
				{"serviceCharge", got.ServiceCharge, tt.want.ServiceCharge},
				{"packagingFee", got.PackagingFee, tt.want.PackagingFee},
				{"deliveryFee", got.DeliveryFee, tt.want.DeliveryFee},
				{"total", got.Total, tt.want.Total},
			}
			for _, c := range checks {
				if !c.got.Equal(c.want) {
					t.Errorf("%s = %s, want %s", c.field, c.got, c.want)
				}
			}
		})
	}
}

func TestComputeFeesTotalInvariant(t *testing.T) {
	m := models.Merchant{
		EnableTax: true, TaxPercentage: d("7.77"),
		EnableServiceCharge: true, ServiceChargePercentage: d("3.33"),
		EnablePackagingFee: true, PackagingFeeAmount: d("1.25"),
	}
	subtotals := []string{"0.01", "1.00", "19.99", "123.45", "9999.99"}
	for _, s := range subtotals {
		b := ComputeFees(d(s), &m, models.OrderTypeTakeaway, decimal.Zero)
		sum := b.Subtotal.Add(b.Tax).Add(b.ServiceCharge).Add(b.PackagingFee).Add(b.DeliveryFee)
		if !b.Total.Equal(sum) {
			t.Errorf("subtotal %s: total %s != component sum %s", s, b.Total, sum)
		}
	}
}
