package group

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"dineflow/internal/cache"
	"dineflow/internal/database"
	"dineflow/internal/logger"
	"dineflow/internal/models"
	"dineflow/internal/services/order"
)

var sessionNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeStore embeds the assembly store and overrides what the session flows
// touch. Anything the tests should never reach panics through the embedded
// interface.
type fakeStore struct {
	order.Store

	merchant *models.Merchant
	menus    map[int64]*models.CatalogItem

	session      *models.GroupOrderSession
	participants []*models.GroupParticipant
	codesInUse   map[string]bool

	nextID   int64
	orders   []*models.Order
	items    []*models.OrderItem
	payments []*models.Payment
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	ordersLen, itemsLen, paymentsLen := len(f.orders), len(f.items), len(f.payments)
	var sessionBefore *models.GroupOrderSession
	if f.session != nil {
		copied := *f.session
		sessionBefore = &copied
	}
	participantsBefore := make([]*models.GroupParticipant, len(f.participants))
	for i, p := range f.participants {
		copied := *p
		participantsBefore[i] = &copied
	}
	if err := fn(nil); err != nil {
		f.orders = f.orders[:ordersLen]
		f.items = f.items[:itemsLen]
		f.payments = f.payments[:paymentsLen]
		f.session = sessionBefore
		f.participants = participantsBefore
		return err
	}
	return nil
}

func (f *fakeStore) Pool() database.Querier {
	return nil
}

func (f *fakeStore) MerchantByID(ctx context.Context, id int64) (*models.Merchant, error) {
	if f.merchant != nil && f.merchant.ID == id {
		return f.merchant, nil
	}
	return nil, nil
}

func (f *fakeStore) MerchantByCode(ctx context.Context, code string) (*models.Merchant, error) {
	if f.merchant != nil && f.merchant.Code == code {
		return f.merchant, nil
	}
	return nil, nil
}

func (f *fakeStore) MenusByID(ctx context.Context, merchantID int64, ids []int64) (map[int64]*models.CatalogItem, error) {
	found := make(map[int64]*models.CatalogItem)
	for _, id := range ids {
		if item, ok := f.menus[id]; ok {
			found[id] = item
		}
	}
	return found, nil
}

func (f *fakeStore) AddonsByID(ctx context.Context, merchantID int64, ids []int64) (map[int64]*models.CatalogItem, error) {
	return map[int64]*models.CatalogItem{}, nil
}

func (f *fakeStore) PromoWindows(ctx context.Context, merchantID int64, menuIDs []int64, on time.Time) ([]models.PromotionWindow, error) {
	return nil, nil
}

func (f *fakeStore) OrderNumberTaken(ctx context.Context, tx pgx.Tx, merchantID int64, number string, from, to time.Time) (bool, error) {
	return false, nil
}

func (f *fakeStore) InsertOrder(ctx context.Context, tx pgx.Tx, o *models.Order) error {
	f.nextID++
	o.ID = f.nextID
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeStore) InsertOrderItem(ctx context.Context, tx pgx.Tx, item *models.OrderItem) error {
	f.nextID++
	item.ID = f.nextID
	f.items = append(f.items, item)
	return nil
}

func (f *fakeStore) InsertPayment(ctx context.Context, tx pgx.Tx, p *models.Payment) error {
	f.nextID++
	p.ID = f.nextID
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeStore) ActiveSessionByCode(ctx context.Context, code string) (*models.GroupOrderSession, error) {
	s := f.session
	if s == nil || s.SessionCode != code {
		return nil, nil
	}
	if s.Status != models.GroupSessionOpen && s.Status != models.GroupSessionLocked {
		return nil, nil
	}
	return s, nil
}

func (f *fakeStore) SessionForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*models.GroupOrderSession, error) {
	if f.session != nil && f.session.ID == id {
		return f.session, nil
	}
	return nil, nil
}

func (f *fakeStore) SessionCodeInUse(ctx context.Context, tx pgx.Tx, code string) (bool, error) {
	return f.codesInUse[code], nil
}

func (f *fakeStore) InsertSession(ctx context.Context, tx pgx.Tx, s *models.GroupOrderSession) error {
	f.nextID++
	s.ID = f.nextID
	s.Status = models.GroupSessionOpen
	s.CreatedAt = sessionNow
	s.UpdatedAt = sessionNow
	f.session = s
	return nil
}

func (f *fakeStore) SetSessionStatus(ctx context.Context, tx pgx.Tx, id int64, status models.GroupSessionStatus) error {
	f.session.Status = status
	return nil
}

func (f *fakeStore) MarkSubmitted(ctx context.Context, tx pgx.Tx, id, orderID int64) error {
	f.session.Status = models.GroupSessionSubmitted
	f.session.OrderID = &orderID
	return nil
}

func (f *fakeStore) Participants(ctx context.Context, q database.Querier, sessionID int64) ([]models.GroupParticipant, error) {
	var out []models.GroupParticipant
	for _, p := range f.participants {
		if p.SessionID == sessionID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) ParticipantByDevice(ctx context.Context, q database.Querier, sessionID int64, deviceID string) (*models.GroupParticipant, error) {
	for _, p := range f.participants {
		if p.SessionID == sessionID && p.DeviceID == deviceID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Participant(ctx context.Context, q database.Querier, id, sessionID int64) (*models.GroupParticipant, error) {
	for _, p := range f.participants {
		if p.ID == id && p.SessionID == sessionID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CountParticipants(ctx context.Context, q database.Querier, sessionID int64) (int, error) {
	n := 0
	for _, p := range f.participants {
		if p.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) InsertParticipant(ctx context.Context, tx pgx.Tx, p *models.GroupParticipant) error {
	f.nextID++
	p.ID = f.nextID
	p.JoinedAt = sessionNow.Add(time.Duration(len(f.participants)) * time.Second)
	if p.Cart == nil {
		p.Cart = []byte("[]")
	}
	f.participants = append(f.participants, p)
	return nil
}

func (f *fakeStore) UpdateParticipantCart(ctx context.Context, tx pgx.Tx, id int64, cart []byte) error {
	f.find(id).Cart = cart
	return nil
}

func (f *fakeStore) DeleteParticipant(ctx context.Context, tx pgx.Tx, id int64) error {
	kept := f.participants[:0]
	for _, p := range f.participants {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.participants = kept
	return nil
}

func (f *fakeStore) SetParticipantHost(ctx context.Context, tx pgx.Tx, id int64, isHost bool) error {
	f.find(id).IsHost = isHost
	return nil
}

func (f *fakeStore) find(id int64) *models.GroupParticipant {
	for _, p := range f.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func newFixture(t *testing.T) (*fakeStore, *Service) {
	t.Helper()
	f := &fakeStore{
		merchant: &models.Merchant{
			ID: 1, Code: "DEMO", Name: "Demo Kitchen",
			Timezone: "UTC", IsActive: true,
			IsDineInEnabled: true, IsTakeawayEnabled: true,
			EnableTax: true, TaxPercentage: d("10"),
		},
		menus: map[int64]*models.CatalogItem{
			1: {ID: 1, Kind: models.KindMenu, MerchantID: 1, Name: "Nasi Goreng",
				Price: d("12.00"), IsActive: true},
			2: {ID: 2, Kind: models.KindMenu, MerchantID: 1, Name: "Sate Ayam",
				Price: d("8.50"), IsActive: true},
		},
		codesInUse: map[string]bool{},
	}
	log := logger.New("group-test")
	svc := NewService(f, order.NewEngine(f, nil, nil, log), cache.NewStore(time.Minute, time.Minute), log)
	svc.now = func() time.Time { return sessionNow }
	return f, svc
}

// seedSession seats Alice as host and Bob as a member of session ABCD, each
// with a one-line sub-cart.
func seedSession(f *fakeStore) {
	f.session = &models.GroupOrderSession{
		ID: 10, SessionCode: "ABCD", MerchantID: 1,
		OrderType: models.OrderTypeDineIn, Status: models.GroupSessionOpen,
		MaxParticipants: 8, ExpiresAt: sessionNow.Add(time.Hour),
	}
	f.participants = []*models.GroupParticipant{
		{ID: 11, SessionID: 10, Name: "Alice", DeviceID: "alice-dev", IsHost: true,
			Cart: []byte(`[{"menuId":1,"quantity":2}]`), JoinedAt: sessionNow.Add(-30 * time.Minute)},
		{ID: 12, SessionID: 10, Name: "Bob", DeviceID: "bob-dev",
			Cart: []byte(`[{"menuId":2,"quantity":1,"notes":"extra spicy"}]`), JoinedAt: sessionNow.Add(-29 * time.Minute)},
	}
	f.nextID = 100
}

func TestCreateSessionSeatsHost(t *testing.T) {
	f, svc := newFixture(t)
	f.codesInUse["AAAA"] = true
	codes := []string{"AAAA", "BBBB"}
	svc.randText = func(n int) (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	view, err := svc.Create(context.Background(), &CreateSessionRequest{
		MerchantCode: "DEMO", OrderType: "DINE_IN", TableNumber: "7",
		DeviceID: "host-dev", Name: "Alice",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	s := view.Session
	if s.SessionCode != "BBBB" {
		t.Errorf("code = %s, want BBBB after the AAAA collision", s.SessionCode)
	}
	if s.Status != models.GroupSessionOpen || s.MaxParticipants != 8 {
		t.Errorf("status/max = %s/%d, want OPEN/8", s.Status, s.MaxParticipants)
	}
	if !s.ExpiresAt.Equal(sessionNow.Add(2 * time.Hour)) {
		t.Errorf("expires at %s, want two hours out", s.ExpiresAt)
	}
	if s.TableNumber == nil || *s.TableNumber != "7" {
		t.Errorf("table number = %v, want 7", s.TableNumber)
	}

	if len(view.Participants) != 1 || !view.Participants[0].IsHost || view.Participants[0].Name != "Alice" {
		t.Errorf("participants = %+v, want Alice hosting alone", view.Participants)
	}
	if len(f.participants) != 1 || f.participants[0].SessionID != s.ID {
		t.Errorf("stored participants = %+v, want one row in session %d", f.participants, s.ID)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	tests := []struct {
		name     string
		req      *CreateSessionRequest
		wantCode string
	}{
		{
			name: "missing device",
			req:  &CreateSessionRequest{MerchantCode: "DEMO", OrderType: "DINE_IN"},
		},
		{
			name: "missing merchant code",
			req:  &CreateSessionRequest{OrderType: "DINE_IN", DeviceID: "dev"},
		},
		{
			name:     "unknown merchant",
			req:      &CreateSessionRequest{MerchantCode: "NOPE", OrderType: "DINE_IN", DeviceID: "dev"},
			wantCode: models.ErrCodeNotFound,
		},
		{
			name: "unknown order type",
			req:  &CreateSessionRequest{MerchantCode: "DEMO", OrderType: "PICKUP", DeviceID: "dev"},
		},
		{
			name:     "mode disabled",
			req:      &CreateSessionRequest{MerchantCode: "DEMO", OrderType: "DELIVERY", DeviceID: "dev"},
			wantCode: models.ErrCodeInvalidOrderType,
		},
		{
			name: "party of one",
			req:  &CreateSessionRequest{MerchantCode: "DEMO", OrderType: "DINE_IN", DeviceID: "dev", MaxParticipants: 1},
		},
		{
			name: "party too big",
			req:  &CreateSessionRequest{MerchantCode: "DEMO", OrderType: "DINE_IN", DeviceID: "dev", MaxParticipants: 21},
		},
		{
			name: "table number too long",
			req: &CreateSessionRequest{MerchantCode: "DEMO", OrderType: "DINE_IN", DeviceID: "dev",
				TableNumber: strings.Repeat("7", 17)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, svc := newFixture(t)

			_, err := svc.Create(context.Background(), tt.req)
			if tt.wantCode != "" {
				oe, ok := models.AsOrderError(err)
				if !ok || oe.Code != tt.wantCode {
					t.Fatalf("err = %v, want %s", err, tt.wantCode)
				}
			} else if _, ok := models.AsValidationError(err); !ok {
				t.Fatalf("err = %v, want validation error", err)
			}
			if f.session != nil {
				t.Error("rejected create still opened a session")
			}
		})
	}
}

func TestJoinSeatsNewDevice(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)

	p, err := svc.Join(context.Background(), "ABCD", &JoinRequest{DeviceID: "carol-dev", Name: "Carol"})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if p.ID == 0 || p.SessionID != 10 || p.IsHost {
		t.Errorf("participant = %+v, want a non-host row in session 10", p)
	}
	if len(f.participants) != 3 {
		t.Fatalf("participants = %d, want 3", len(f.participants))
	}

	// A seated device joining again gets its existing row back.
	again, err := svc.Join(context.Background(), "ABCD", &JoinRequest{DeviceID: "bob-dev", Name: "Robert"})
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again.ID != 12 || again.Name != "Bob" {
		t.Errorf("rejoin returned %+v, want Bob's existing row", again)
	}
	if len(f.participants) != 3 {
		t.Errorf("rejoin grew the session to %d participants", len(f.participants))
	}
}

func TestJoinFullSession(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)
	f.session.MaxParticipants = 2

	_, err := svc.Join(context.Background(), "ABCD", &JoinRequest{DeviceID: "carol-dev"})
	oe, ok := models.AsOrderError(err)
	if !ok || oe.Code != models.ErrCodeSessionNotOpen {
		t.Fatalf("err = %v, want SESSION_NOT_OPEN", err)
	}
	if oe.Message != "session is full" {
		t.Errorf("message = %q, want the capacity message", oe.Message)
	}
	if len(f.participants) != 2 {
		t.Errorf("full session still seated a participant")
	}
}

func TestJoinRateLimited(t *testing.T) {
	_, svc := newFixture(t)

	// The limiter sits in front of the lookup, so guessing codes burns the
	// device's budget even when every guess misses.
	for i := 0; i < 3; i++ {
		_, err := svc.Join(context.Background(), "ZZZZ", &JoinRequest{DeviceID: "dev-1"})
		if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeNotFound {
			t.Fatalf("attempt %d err = %v, want NOT_FOUND", i+1, err)
		}
	}
	_, err := svc.Join(context.Background(), "ZZZZ", &JoinRequest{DeviceID: "dev-1"})
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeRateLimited {
		t.Fatalf("err = %v, want RATE_LIMITED", err)
	}

	// Another device is unaffected.
	_, err = svc.Join(context.Background(), "ZZZZ", &JoinRequest{DeviceID: "dev-2"})
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeNotFound {
		t.Fatalf("second device err = %v, want NOT_FOUND", err)
	}
}

func TestUpdateCartOwnership(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)

	err := svc.UpdateCart(context.Background(), "ABCD", 11, &UpdateCartRequest{
		DeviceID: "alice-dev",
		Items:    []models.CartItem{{MenuID: 2, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("UpdateCart: %v", err)
	}
	items, err := f.find(11).CartItems()
	if err != nil || len(items) != 1 || items[0].MenuID != 2 || items[0].Quantity != 3 {
		t.Errorf("stored cart = %+v (%v), want one line of menu 2", items, err)
	}

	// An empty item list clears the cart to an empty array, not null.
	if err := svc.UpdateCart(context.Background(), "ABCD", 11, &UpdateCartRequest{DeviceID: "alice-dev"}); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	if string(f.find(11).Cart) != "[]" {
		t.Errorf("cleared cart = %s, want []", f.find(11).Cart)
	}

	err = svc.UpdateCart(context.Background(), "ABCD", 12, &UpdateCartRequest{
		DeviceID: "alice-dev",
		Items:    []models.CartItem{{MenuID: 1, Quantity: 1}},
	})
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeForbidden {
		t.Fatalf("foreign cart err = %v, want FORBIDDEN", err)
	}

	err = svc.UpdateCart(context.Background(), "ABCD", 99, &UpdateCartRequest{DeviceID: "alice-dev"})
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeNotFound {
		t.Fatalf("unknown participant err = %v, want NOT_FOUND", err)
	}
}

func TestLeaveHandsHostOver(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)

	if err := svc.Leave(context.Background(), "ABCD", "alice-dev"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if f.find(11) != nil {
		t.Error("departed host still seated")
	}
	if bob := f.find(12); bob == nil || !bob.IsHost {
		t.Errorf("remaining member = %+v, want Bob promoted to host", bob)
	}
	if f.session.Status != models.GroupSessionOpen {
		t.Errorf("session status = %s after handover, want OPEN", f.session.Status)
	}

	// The last member leaving cancels the session.
	if err := svc.Leave(context.Background(), "ABCD", "bob-dev"); err != nil {
		t.Fatalf("last leave: %v", err)
	}
	if len(f.participants) != 0 {
		t.Errorf("participants = %d, want 0", len(f.participants))
	}
	if f.session.Status != models.GroupSessionCancelled {
		t.Errorf("session status = %s, want CANCELLED", f.session.Status)
	}
}

func TestKickIsHostOnly(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)

	err := svc.Kick(context.Background(), "ABCD", 11, "bob-dev")
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeForbidden {
		t.Fatalf("member kick err = %v, want FORBIDDEN", err)
	}

	err = svc.Kick(context.Background(), "ABCD", 11, "alice-dev")
	if _, ok := models.AsValidationError(err); !ok {
		t.Fatalf("self kick err = %v, want validation error", err)
	}

	if err := svc.Kick(context.Background(), "ABCD", 12, "alice-dev"); err != nil {
		t.Fatalf("Kick: %v", err)
	}
	if f.find(12) != nil {
		t.Error("kicked participant still seated")
	}
}

func TestTransferHost(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)

	if err := svc.TransferHost(context.Background(), "ABCD", 12, "alice-dev"); err != nil {
		t.Fatalf("TransferHost: %v", err)
	}
	if f.find(11).IsHost || !f.find(12).IsHost {
		t.Errorf("host flags = %v/%v, want false/true", f.find(11).IsHost, f.find(12).IsHost)
	}

	err := svc.TransferHost(context.Background(), "ABCD", 12, "bob-dev")
	if _, ok := models.AsValidationError(err); !ok {
		t.Fatalf("self transfer err = %v, want validation error", err)
	}

	err = svc.TransferHost(context.Background(), "ABCD", 11, "alice-dev")
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeForbidden {
		t.Fatalf("former host err = %v, want FORBIDDEN", err)
	}
}

func TestStatusSummarizesCarts(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)
	// Bob's second line references an item that has left the catalog; it
	// counts toward his item total but prices at zero.
	f.participants[1].Cart = []byte(`[{"menuId":2,"quantity":1},{"menuId":99,"quantity":3}]`)

	view, err := svc.Status(context.Background(), "ABCD")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if view.Merchant == nil || view.Merchant.ID != 1 {
		t.Fatalf("merchant = %+v, want merchant 1", view.Merchant)
	}
	if len(view.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(view.Participants))
	}

	alice, bob := view.Participants[0], view.Participants[1]
	if !alice.IsHost || alice.ItemCount != 2 || !alice.Subtotal.Equal(d("24.00")) {
		t.Errorf("alice = %+v, want host with 2 items at 24.00", alice)
	}
	if bob.ItemCount != 4 || !bob.Subtotal.Equal(d("8.50")) {
		t.Errorf("bob = %+v, want 4 items at 8.50", bob)
	}
}

func TestSubmitMergesAndSplits(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)

	res, err := svc.Submit(context.Background(), "ABCD", "alice-dev")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	o := res.Order.Order
	if o.Origin != models.OriginGroup || o.Status != models.StatusPending {
		t.Errorf("origin/status = %s/%s, want GROUP/PENDING", o.Origin, o.Status)
	}
	if !strings.HasPrefix(o.OrderNumber, "DEMO-") {
		t.Errorf("order number = %s, want the merchant code prefix", o.OrderNumber)
	}
	if o.Payment == nil || o.Payment.Method != models.PaymentOnline {
		t.Errorf("payment = %+v, want a pending ONLINE payment", o.Payment)
	}

	if len(o.Items) != 2 {
		t.Fatalf("items = %d, want 2 merged lines", len(o.Items))
	}
	first, second := o.Items[0], o.Items[1]
	if first.MenuName != "Nasi Goreng" || first.Quantity != 2 || first.Notes == nil || *first.Notes != "Alice" {
		t.Errorf("first line = %+v, want Alice's tagged line", first)
	}
	if second.MenuName != "Sate Ayam" || second.Notes == nil || *second.Notes != "Bob: extra spicy" {
		t.Errorf("second line = %+v, want Bob's tagged line", second)
	}

	if !o.Subtotal.Equal(d("32.50")) || !o.TaxAmount.Equal(d("3.25")) || !o.TotalAmount.Equal(d("35.75")) {
		t.Errorf("totals = %s/%s/%s, want 32.50/3.25/35.75", o.Subtotal, o.TaxAmount, o.TotalAmount)
	}

	if f.session.Status != models.GroupSessionSubmitted {
		t.Errorf("session status = %s, want SUBMITTED", f.session.Status)
	}
	if f.session.OrderID == nil || *f.session.OrderID != o.ID {
		t.Errorf("session order id = %v, want %d", f.session.OrderID, o.ID)
	}

	split := res.Split
	if !split.OrderTotal.Equal(d("35.75")) || len(split.Shares) != 2 {
		t.Fatalf("split = %+v, want two shares of 35.75", split)
	}
	alice, bob := split.Shares[0], split.Shares[1]
	if alice.ParticipantID != 11 || !alice.Subtotal.Equal(d("24.00")) ||
		!alice.TaxShare.Equal(d("2.40")) || !alice.TotalShare.Equal(d("26.40")) {
		t.Errorf("alice share = %+v, want 24.00 + 2.40 tax", alice)
	}
	if bob.ParticipantID != 12 || !bob.Subtotal.Equal(d("8.50")) ||
		!bob.TaxShare.Equal(d("0.85")) || !bob.TotalShare.Equal(d("9.35")) {
		t.Errorf("bob share = %+v, want 8.50 + 0.85 tax", bob)
	}
}

func TestSubmitRequiresHost(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)

	_, err := svc.Submit(context.Background(), "ABCD", "bob-dev")
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeForbidden {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
	if len(f.orders) != 0 || len(f.payments) != 0 {
		t.Error("rejected submit left order rows behind")
	}
	if f.session.Status != models.GroupSessionOpen {
		t.Errorf("session status = %s, want OPEN", f.session.Status)
	}
}

func TestSubmitExpiredSession(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)
	f.session.ExpiresAt = sessionNow.Add(-time.Minute)

	_, err := svc.Submit(context.Background(), "ABCD", "alice-dev")
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeSessionNotOpen {
		t.Fatalf("err = %v, want SESSION_NOT_OPEN", err)
	}
	if len(f.orders) != 0 {
		t.Error("expired session still assembled an order")
	}
}

func TestSubmitEmptyCarts(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)
	f.participants[0].Cart = []byte("[]")
	f.participants[1].Cart = nil

	_, err := svc.Submit(context.Background(), "ABCD", "alice-dev")
	if _, ok := models.AsValidationError(err); !ok {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(f.orders) != 0 {
		t.Error("empty submit still assembled an order")
	}
	if f.session.Status != models.GroupSessionOpen {
		t.Errorf("session status = %s after rollback, want OPEN", f.session.Status)
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)

	if _, err := svc.Submit(context.Background(), "ABCD", "alice-dev"); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// A submitted session no longer resolves by code.
	_, err := svc.Submit(context.Background(), "ABCD", "alice-dev")
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeNotFound {
		t.Fatalf("second submit err = %v, want NOT_FOUND", err)
	}
	if len(f.orders) != 1 {
		t.Errorf("orders = %d, want the one from the first submit", len(f.orders))
	}
}

func TestLockedSessionAcceptsSubmitOnly(t *testing.T) {
	f, svc := newFixture(t)
	seedSession(f)
	f.session.Status = models.GroupSessionLocked

	err := svc.UpdateCart(context.Background(), "ABCD", 11, &UpdateCartRequest{
		DeviceID: "alice-dev",
		Items:    []models.CartItem{{MenuID: 1, Quantity: 1}},
	})
	if oe, ok := models.AsOrderError(err); !ok || oe.Code != models.ErrCodeSessionNotOpen {
		t.Fatalf("locked cart edit err = %v, want SESSION_NOT_OPEN", err)
	}

	if _, err := svc.Submit(context.Background(), "ABCD", "alice-dev"); err != nil {
		t.Fatalf("locked submit: %v", err)
	}
	if f.session.Status != models.GroupSessionSubmitted {
		t.Errorf("session status = %s, want SUBMITTED", f.session.Status)
	}
}
