package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dineflow/internal/logger"
	"dineflow/internal/models"
	"dineflow/internal/schedule"
)

// OrderRequest is the request body shared by the POS and public ordering
// endpoints. POS addresses the merchant by id, the public path by code.
type OrderRequest struct {
	MerchantID   int64  `json:"merchantId,omitempty"`
	MerchantCode string `json:"merchantCode,omitempty"`

	models.Cart

	IsScheduled   bool            `json:"isScheduled,omitempty"`
	ScheduledDate string          `json:"scheduledDate,omitempty"`
	ScheduledTime string          `json:"scheduledTime,omitempty"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee,omitempty"`
}

// Service exposes the order-assembly use cases the HTTP handlers call. It
// owns the adapter-level policy: which origin, status and payment method each
// path uses, and how customers are resolved before the transaction.
type Service struct {
	store     Store
	engine    *Engine
	waitTimes *WaitTracker
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates an order service.
func NewService(store Store, engine *Engine, waitTimes *WaitTracker, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		engine:    engine,
		waitTimes: waitTimes,
		logger:    log,
		now:       time.Now,
	}
}

// PlacePOSOrder assembles a staff-entered cart. The order starts ACCEPTED
// with payment due at the counter; a customer is attached only when the cart
// names one.
func (s *Service) PlacePOSOrder(ctx context.Context, req *OrderRequest) (*Result, error) {
	if req.MerchantID <= 0 {
		return nil, models.NewValidationError("merchantId", "is required")
	}
	merchant, err := s.store.MerchantByID(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil || !merchant.IsActive {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "merchant not found")
	}

	sub, err := s.buildSubmission(ctx, merchant, req)
	if err != nil {
		return nil, err
	}
	sub.Origin = models.OriginPOS
	sub.Status = models.StatusAccepted
	sub.PaymentMethod = models.PaymentCashOnCounter

	return s.engine.Submit(ctx, sub)
}

// PlacePublicOrder assembles a customer-submitted cart. The order starts
// PENDING with online payment, and the customer row is resolved or created
// from the cart's contact details before the transaction.
func (s *Service) PlacePublicOrder(ctx context.Context, req *OrderRequest) (*Result, error) {
	merchant, err := s.lookupMerchant(ctx, req.MerchantCode)
	if err != nil {
		return nil, err
	}

	sub, err := s.buildSubmission(ctx, merchant, req)
	if err != nil {
		return nil, err
	}
	sub.Origin = models.OriginOnline
	sub.Status = models.StatusPending
	sub.PaymentMethod = models.PaymentOnline

	return s.engine.Submit(ctx, sub)
}

// buildSubmission runs the shared pre-transaction work: cart validation,
// customer resolution and scheduling checks.
func (s *Service) buildSubmission(ctx context.Context, merchant *models.Merchant, req *OrderRequest) (*Submission, error) {
	cart := &req.Cart
	cart.Normalize()
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	customerID, err := ResolveCustomer(ctx, s.store, s.logger, merchant, cart.Customer)
	if err != nil {
		return nil, err
	}

	slot, err := s.scheduledSlot(merchant, req)
	if err != nil {
		return nil, err
	}

	return &Submission{
		Merchant:    merchant,
		Cart:        cart,
		CustomerID:  customerID,
		DeliveryFee: req.DeliveryFee,
		Scheduled:   slot,
	}, nil
}

// scheduledSlot validates the schedule fields and rejects instants already in
// the past in the merchant's timezone. The availability gate itself runs
// later, inside the transaction.
func (s *Service) scheduledSlot(merchant *models.Merchant, req *OrderRequest) (*ScheduledSlot, error) {
	if !req.IsScheduled {
		return nil, nil
	}
	if req.ScheduledDate == "" {
		return nil, models.NewValidationError("scheduledDate", "is required for scheduled orders")
	}
	if req.ScheduledTime == "" {
		return nil, models.NewValidationError("scheduledTime", "is required for scheduled orders")
	}

	loc := merchant.Location()
	at, err := time.ParseInLocation("2006-01-02 15:04", req.ScheduledDate+" "+req.ScheduledTime, loc)
	if err != nil {
		return nil, models.NewValidationError("scheduledDate", "must be an ISO date with a HH:MM time")
	}
	if !at.After(s.now().In(loc)) {
		return nil, models.NewValidationError("scheduledDate", "must be in the future")
	}

	return &ScheduledSlot{Date: req.ScheduledDate, Time: req.ScheduledTime}, nil
}

// ResolveCustomer finds or creates the customer a cart names. Lookup prefers
// email over phone; on a hit the stored name and phone are opportunistically
// refreshed. Runs before the assembly transaction, which only needs the id.
func ResolveCustomer(ctx context.Context, store Store, log *logger.Logger, merchant *models.Merchant, cc *models.CartCustomer) (*int64, error) {
	if cc == nil || (cc.Email == "" && cc.Phone == "") {
		return nil, nil
	}

	var existing *models.Customer
	var err error
	if cc.Email != "" {
		existing, err = store.CustomerByEmail(ctx, merchant.ID, cc.Email)
		if err != nil {
			return nil, err
		}
	}
	if existing == nil && cc.Phone != "" {
		existing, err = store.CustomerByPhone(ctx, merchant.ID, cc.Phone)
		if err != nil {
			return nil, err
		}
	}

	if existing != nil {
		if cc.Name != "" || cc.Phone != "" {
			if err := store.UpdateCustomerContact(ctx, existing.ID, cc.Name, cc.Phone); err != nil {
				log.Error("customer_update_failed", "Failed to refresh customer contact", "", err, map[string]interface{}{
					"customer_id": existing.ID,
				})
			}
		}
		return &existing.ID, nil
	}

	name := cc.Name
	if name == "" {
		name = "Guest"
	}
	customer := &models.Customer{
		MerchantID: merchant.ID,
		Name:       name,
		Email:      optional(cc.Email),
		Phone:      optional(cc.Phone),
	}
	if err := store.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return &customer.ID, nil
}

// ModeVerdict pairs one fulfillment mode with its gate verdict.
type ModeVerdict struct {
	Mode    models.OrderType
	Verdict schedule.Verdict
}

// StatusReport is the gate evaluated at "now" in the merchant's timezone.
type StatusReport struct {
	Merchant       *models.Merchant
	CheckedAt      time.Time
	Store          schedule.Verdict
	Modes          []ModeVerdict
	SpecialHour    string
	ManualOverride bool
}

// MerchantStatus evaluates store and per-mode availability right now.
func (s *Service) MerchantStatus(ctx context.Context, code string) (*StatusReport, error) {
	merchant, err := s.lookupMerchant(ctx, code)
	if err != nil {
		return nil, err
	}

	local := s.now().In(merchant.Location())
	date := local.Format("2006-01-02")
	clock := local.Format("15:04")

	sched, err := s.store.ScheduleFor(ctx, merchant, date)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	report := &StatusReport{
		Merchant:       merchant,
		CheckedAt:      local,
		Store:          sched.StoreOpen(date, clock),
		ManualOverride: merchant.IsManualOverride,
	}
	if sched.Special != nil {
		report.SpecialHour = sched.Special.Name
	}
	for _, mode := range []models.OrderType{models.OrderTypeDineIn, models.OrderTypeTakeaway, models.OrderTypeDelivery} {
		report.Modes = append(report.Modes, ModeVerdict{
			Mode:    mode,
			Verdict: sched.ModeAvailable(mode, date, clock),
		})
	}
	return report, nil
}

// WaitEstimate is the rough preparation-time answer for one merchant.
type WaitEstimate struct {
	Merchant    *models.Merchant
	Minutes     int
	SampleCount int
}

// EstimateWait returns the current preparation-time estimate.
func (s *Service) EstimateWait(ctx context.Context, code string) (*WaitEstimate, error) {
	merchant, err := s.lookupMerchant(ctx, code)
	if err != nil {
		return nil, err
	}
	minutes, samples := s.waitTimes.Estimate(merchant.ID)
	return &WaitEstimate{Merchant: merchant, Minutes: minutes, SampleCount: samples}, nil
}

// lookupMerchant resolves a public merchant code. Inactive merchants are
// indistinguishable from missing ones.
func (s *Service) lookupMerchant(ctx context.Context, code string) (*models.Merchant, error) {
	if code == "" {
		return nil, models.NewValidationError("merchantCode", "is required")
	}
	merchant, err := s.store.MerchantByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if merchant == nil || !merchant.IsActive {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "merchant not found")
	}
	return merchant, nil
}
