package group

import (
	"testing"

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

func TestComputeBillSplitProportional(t *testing.T) {
	o := &models.Order{
		Subtotal:    d("100.00"),
		TaxAmount:   d("10.00"),
		TotalAmount: d("110.00"),
	}
	contributions := []Contribution{
		{ParticipantID: 1, Name: "Alice", Subtotal: d("60.00")},
		{ParticipantID: 2, Name: "Bob", Subtotal: d("40.00")},
	}

	split := ComputeBillSplit(o, contributions)
	if len(split.Shares) != 2 {
		t.Fatalf("shares = %d, want 2", len(split.Shares))
	}

	if !split.Shares[0].TaxShare.Equal(d("6.00")) || !split.Shares[1].TaxShare.Equal(d("4.00")) {
		t.Errorf("tax shares = %s/%s, want 6.00/4.00", split.Shares[0].TaxShare, split.Shares[1].TaxShare)
	}
	if !split.Shares[0].TotalShare.Equal(d("66.00")) || !split.Shares[1].TotalShare.Equal(d("44.00")) {
		t.Errorf("total shares = %s/%s, want 66.00/44.00", split.Shares[0].TotalShare, split.Shares[1].TotalShare)
	}

	sum := split.Shares[0].TotalShare.Add(split.Shares[1].TotalShare)
	if !sum.Equal(o.TotalAmount) {
		t.Errorf("share sum %s != order total %s", sum, o.TotalAmount)
	}
}

func TestComputeBillSplitResidualGoesToLastParticipant(t *testing.T) {
	o := &models.Order{
		Subtotal:    d("30.00"),
		TaxAmount:   d("1.00"),
		TotalAmount: d("31.00"),
	}
	contributions := []Contribution{
		{ParticipantID: 1, Name: "A", Subtotal: d("10.00")},
		{ParticipantID: 2, Name: "B", Subtotal: d("10.00")},
		{ParticipantID: 3, Name: "C", Subtotal: d("10.00")},
	}

	split := ComputeBillSplit(o, contributions)

	want := []string{"0.33", "0.33", "0.34"}
	sum := decimal.Zero
	for i, share := range split.Shares {
		if !share.TaxShare.Equal(d(want[i])) {
			t.Errorf("share %d tax = %s, want %s", i, share.TaxShare, want[i])
		}
		sum = sum.Add(share.TaxShare)
	}
	if !sum.Equal(o.TaxAmount) {
		t.Errorf("tax shares sum %s != %s", sum, o.TaxAmount)
	}
}

func TestComputeBillSplitEveryComponent(t *testing.T) {
	o := &models.Order{
		Subtotal:            d("50.00"),
		TaxAmount:           d("5.00"),
		ServiceChargeAmount: d("2.50"),
		PackagingFeeAmount:  d("2.00"),
		DeliveryFeeAmount:   d("4.00"),
		TotalAmount:         d("63.50"),
	}
	contributions := []Contribution{
		{ParticipantID: 1, Name: "A", Subtotal: d("37.50")},
		{ParticipantID: 2, Name: "B", Subtotal: d("12.50")},
	}

	split := ComputeBillSplit(o, contributions)

	totals := decimal.Zero
	for _, share := range split.Shares {
		totals = totals.Add(share.TotalShare)
	}
	if !totals.Equal(o.TotalAmount) {
		t.Errorf("total shares sum %s != order total %s", totals, o.TotalAmount)
	}

	// 75% of each component lands on A.
	if !split.Shares[0].DeliveryShare.Equal(d("3.00")) {
		t.Errorf("A delivery share = %s, want 3.00", split.Shares[0].DeliveryShare)
	}
	if !split.Shares[0].ServiceShare.Equal(d("1.88")) || !split.Shares[1].ServiceShare.Equal(d("0.62")) {
		t.Errorf("service shares = %s/%s, want 1.88/0.62",
			split.Shares[0].ServiceShare, split.Shares[1].ServiceShare)
	}
}

func TestComputeBillSplitZeroSubtotal(t *testing.T) {
	o := &models.Order{
		Subtotal:          d("0"),
		DeliveryFeeAmount: d("4.00"),
		TotalAmount:       d("4.00"),
	}
	contributions := []Contribution{
		{ParticipantID: 1, Name: "A", Subtotal: decimal.Zero},
		{ParticipantID: 2, Name: "B", Subtotal: decimal.Zero},
	}

	split := ComputeBillSplit(o, contributions)
	if !split.Shares[0].DeliveryShare.IsZero() {
		t.Errorf("first share = %s, want 0", split.Shares[0].DeliveryShare)
	}
	if !split.Shares[1].DeliveryShare.Equal(d("4.00")) {
		t.Errorf("last share = %s, want the whole 4.00", split.Shares[1].DeliveryShare)
	}
}

func TestComputeBillSplitNoParticipants(t *testing.T) {
	o := &models.Order{TotalAmount: d("10.00")}
	split := ComputeBillSplit(o, nil)
	if len(split.Shares) != 0 {
		t.Errorf("shares = %d, want 0", len(split.Shares))
	}
	if !split.OrderTotal.Equal(d("10.00")) {
		t.Errorf("order total = %s, want 10.00", split.OrderTotal)
	}
}

func TestMergeCarts(t *testing.T) {
	table := "7"
	session := &models.GroupOrderSession{
		OrderType:   models.OrderTypeDineIn,
		TableNumber: &table,
	}
	participants := []models.GroupParticipant{
		{ID: 1, Name: "Alice", Cart: []byte(`[{"menuId":1,"quantity":2}]`)},
		{ID: 2, Name: "Bob", Cart: []byte(`[{"menuId":2,"quantity":1,"notes":"no onions"},{"menuId":1,"quantity":1}]`)},
		{ID: 3, Name: "Cara", Cart: nil},
	}

	cart, owners, err := mergeCarts(session, participants)
	if err != nil {
		t.Fatalf("mergeCarts: %v", err)
	}

	if len(cart.Items) != 3 {
		t.Fatalf("merged lines = %d, want 3", len(cart.Items))
	}
	if cart.TableNumber != "7" {
		t.Errorf("table number = %q, want 7", cart.TableNumber)
	}

	wantOwners := []int{0, 1, 1}
	for i, owner := range owners {
		if owner != wantOwners[i] {
			t.Errorf("owners[%d] = %d, want %d", i, owner, wantOwners[i])
		}
	}

	if cart.Items[0].Notes != "Alice" {
		t.Errorf("line 0 notes = %q, want owner tag", cart.Items[0].Notes)
	}
	if cart.Items[1].Notes != "Bob: no onions" {
		t.Errorf("line 1 notes = %q, want tagged note", cart.Items[1].Notes)
	}
}

func TestMergeCartsRejectsEmptySession(t *testing.T) {
	session := &models.GroupOrderSession{OrderType: models.OrderTypeDineIn}
	participants := []models.GroupParticipant{
		{ID: 1, Name: "Alice", Cart: []byte(`[]`)},
		{ID: 2, Name: "Bob"},
	}

	_, _, err := mergeCarts(session, participants)
	if _, ok := models.AsValidationError(err); !ok {
		t.Fatalf("err = %v, want validation error", err)
	}
}
