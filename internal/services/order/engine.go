package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"dineflow/internal/logger"
	"dineflow/internal/models"
	"dineflow/internal/pricing"
)

// Engine assembles orders. One call is one database transaction: validate the
// cart against the live catalog, resolve prices, decrement stock under the
// conditional-update guard, compute fees, and persist the whole order graph.
// Either everything lands or nothing does. Side effects that consistency does
// not depend on (events, customer stats, wait-time samples) run strictly
// after commit and never fail the order.
type Engine struct {
	store     Store
	publisher EventPublisher
	numbers   *NumberGenerator
	waitTimes *WaitTracker
	logger    *logger.Logger
	now       func() time.Time
}

// NewEngine creates an assembly engine. publisher and waitTimes may be nil.
func NewEngine(store Store, publisher EventPublisher, waitTimes *WaitTracker, log *logger.Logger) *Engine {
	return &Engine{
		store:     store,
		publisher: publisher,
		numbers:   NewNumberGenerator(store),
		waitTimes: waitTimes,
		logger:    log,
		now:       time.Now,
	}
}

// ScheduledSlot pins an assembly to a target instant in the merchant's
// calendar. When set, the availability gate is evaluated at that instant
// instead of being skipped.
type ScheduledSlot struct {
	Date string // "2006-01-02"
	Time string // "15:04"
}

// Submission is one cart ready for assembly, with the origin-specific choices
// already made by the adapter that built it.
type Submission struct {
	Merchant      *models.Merchant
	Cart          *models.Cart
	Origin        models.OrderOrigin
	Status        models.OrderStatus
	PaymentMethod models.PaymentMethod
	CustomerID    *int64
	DeliveryFee   decimal.Decimal
	Scheduled     *ScheduledSlot
	Participants  int

	// PostPersist, when set, runs inside the transaction after the order
	// graph is written, so adapters can update their own rows (reservation,
	// group session) atomically with the order.
	PostPersist func(ctx context.Context, tx pgx.Tx, o *models.Order) error
}

// Result is a committed assembly: the hydrated order and the items the run
// depleted.
type Result struct {
	Order    *models.Order
	Merchant *models.Merchant
	Depleted []DepletedItem

	sub *Submission
}

// Run opens the assembly transaction and hands it to build, which returns
// the submission to assemble. Adapter preconditions checked inside build
// share the transaction's atomicity with the order itself. After commit the
// best-effort side effects fire.
func (e *Engine) Run(ctx context.Context, build func(ctx context.Context, tx pgx.Tx) (*Submission, error)) (*Result, error) {
	var result *Result

	err := e.store.WithinTx(ctx, func(tx pgx.Tx) error {
		sub, err := build(ctx, tx)
		if err != nil {
			return err
		}
		r, err := e.assemble(ctx, tx, sub)
		if err != nil {
			return err
		}
		if sub.PostPersist != nil {
			if err := sub.PostPersist(ctx, tx, r.Order); err != nil {
				return err
			}
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.afterCommit(ctx, result)
	return result, nil
}

// Submit assembles a submission that needs no in-transaction preconditions.
func (e *Engine) Submit(ctx context.Context, sub *Submission) (*Result, error) {
	return e.Run(ctx, func(ctx context.Context, tx pgx.Tx) (*Submission, error) {
		return sub, nil
	})
}

func (e *Engine) assemble(ctx context.Context, tx pgx.Tx, sub *Submission) (*Result, error) {
	merchant, cart := sub.Merchant, sub.Cart
	placedAt := e.now().UTC()

	orderType, ok := models.ParseOrderType(cart.OrderType)
	if !ok || !merchant.ModeEnabled(orderType) {
		return nil, models.ErrInvalidOrderType(cart.OrderType)
	}

	menus, addons, windows, err := e.loadCatalog(ctx, merchant, cart, placedAt)
	if err != nil {
		return nil, err
	}

	if sub.Scheduled != nil {
		if err := e.checkAvailability(ctx, merchant, orderType, sub.Scheduled); err != nil {
			return nil, err
		}
	}

	items, subtotal := buildOrderItems(cart, menus, addons, windows, placedAt)

	reqs := stockRequirements(cart, menus, addons)
	depleted, err := e.applyStockDecrements(ctx, tx, reqs)
	if err != nil {
		return nil, err
	}

	fees := pricing.ComputeFees(subtotal, merchant, orderType, sub.DeliveryFee)

	number, err := e.numbers.Generate(ctx, tx, merchant, placedAt)
	if err != nil {
		return nil, err
	}

	status := sub.Status
	if status == "" {
		status = models.StatusPending
	}

	o := &models.Order{
		MerchantID:  merchant.ID,
		CustomerID:  sub.CustomerID,
		OrderNumber: number,
		OrderType:   orderType,
		TableNumber: optional(cart.TableNumber),
		Status:      status,
		Origin:      sub.Origin,

		Subtotal:            fees.Subtotal,
		TaxAmount:           fees.Tax,
		ServiceChargeAmount: fees.ServiceCharge,
		PackagingFeeAmount:  fees.PackagingFee,
		DeliveryFeeAmount:   fees.DeliveryFee,
		TotalAmount:         fees.Total,

		Notes:    optional(cart.Notes),
		PlacedAt: placedAt,
		Items:    items,
	}
	if status == models.StatusAccepted {
		o.AcceptedAt = &placedAt
	}
	if sub.Scheduled != nil {
		o.IsScheduled = true
		o.ScheduledDate = &sub.Scheduled.Date
		o.ScheduledTime = &sub.Scheduled.Time
	}

	if err := e.persistGraph(ctx, tx, o, sub.PaymentMethod); err != nil {
		return nil, err
	}

	return &Result{Order: o, Merchant: merchant, Depleted: depleted, sub: sub}, nil
}

// loadCatalog fetches every referenced menu and addon row plus the promotion
// windows in play, and rejects carts referencing missing or inactive items.
func (e *Engine) loadCatalog(ctx context.Context, merchant *models.Merchant, cart *models.Cart, at time.Time) (map[int64]*models.CatalogItem, map[int64]*models.CatalogItem, []models.PromotionWindow, error) {
	menuIDs := make([]int64, 0, len(cart.Items))
	seenMenus := make(map[int64]bool)
	var addonIDs []int64
	seenAddons := make(map[int64]bool)

	for _, line := range cart.Items {
		if !seenMenus[line.MenuID] {
			seenMenus[line.MenuID] = true
			menuIDs = append(menuIDs, line.MenuID)
		}
		for _, addon := range line.Addons {
			if !seenAddons[addon.AddonItemID] {
				seenAddons[addon.AddonItemID] = true
				addonIDs = append(addonIDs, addon.AddonItemID)
			}
		}
	}

	menus, err := e.store.MenusByID(ctx, merchant.ID, menuIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load menu items: %w", err)
	}
	addons := map[int64]*models.CatalogItem{}
	if len(addonIDs) > 0 {
		addons, err = e.store.AddonsByID(ctx, merchant.ID, addonIDs)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load addon items: %w", err)
		}
	}

	for _, line := range cart.Items {
		menu, ok := menus[line.MenuID]
		if !ok {
			return nil, nil, nil, models.ErrItemNotFound(fmt.Sprintf("menu item #%d", line.MenuID))
		}
		if !menu.Orderable() {
			return nil, nil, nil, models.ErrItemUnavailable(menu.Name)
		}
		for _, addon := range line.Addons {
			a, ok := addons[addon.AddonItemID]
			if !ok {
				return nil, nil, nil, models.ErrItemNotFound(fmt.Sprintf("addon item #%d", addon.AddonItemID))
			}
			if !a.Orderable() {
				return nil, nil, nil, models.ErrItemUnavailable(a.Name)
			}
		}
	}

	var windows []models.PromotionWindow
	if len(menuIDs) > 0 {
		windows, err = e.store.PromoWindows(ctx, merchant.ID, menuIDs, at)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load promotions: %w", err)
		}
	}

	return menus, addons, windows, nil
}

func (e *Engine) checkAvailability(ctx context.Context, merchant *models.Merchant, orderType models.OrderType, slot *ScheduledSlot) error {
	sched, err := e.store.ScheduleFor(ctx, merchant, slot.Date)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	if v := sched.StoreOpen(slot.Date, slot.Time); !v.OK {
		return models.ErrStoreClosed(v.Reason)
	}
	if v := sched.ModeAvailable(orderType, slot.Date, slot.Time); !v.OK {
		return models.ErrModeUnavailable(string(orderType), v.Reason)
	}
	return nil
}

// buildOrderItems snapshots each cart line at its effective price. The line
// subtotal is the unit price times quantity plus the addon subtotals, each
// component rounded to 2 places.
func buildOrderItems(cart *models.Cart, menus, addons map[int64]*models.CatalogItem, windows []models.PromotionWindow, at time.Time) ([]models.OrderItem, decimal.Decimal) {
	items := make([]models.OrderItem, 0, len(cart.Items))
	subtotal := decimal.Zero

	for _, line := range cart.Items {
		menu := menus[line.MenuID]
		unit := pricing.EffectivePrice(menu.Price, menu.ID, windows, at)
		lineTotal := pricing.Round2(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))

		item := models.OrderItem{
			MenuID:    menu.ID,
			MenuName:  menu.Name,
			MenuPrice: unit,
			Quantity:  line.Quantity,
			Notes:     optional(line.Notes),
		}
		for _, addon := range line.Addons {
			a := addons[addon.AddonItemID]
			addonSubtotal := pricing.Round2(a.Price.Mul(decimal.NewFromInt(int64(addon.Quantity))))
			item.Addons = append(item.Addons, models.OrderItemAddon{
				AddonItemID: a.ID,
				AddonName:   a.Name,
				AddonPrice:  a.Price,
				Quantity:    addon.Quantity,
				Subtotal:    addonSubtotal,
			})
			lineTotal = lineTotal.Add(addonSubtotal)
		}

		item.Subtotal = lineTotal
		subtotal = subtotal.Add(lineTotal)
		items = append(items, item)
	}

	return items, subtotal
}

func (e *Engine) persistGraph(ctx context.Context, tx pgx.Tx, o *models.Order, method models.PaymentMethod) error {
	if err := e.store.InsertOrder(ctx, tx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		if err := e.store.InsertOrderItem(ctx, tx, item); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		for j := range item.Addons {
			addon := &item.Addons[j]
			addon.OrderItemID = item.ID
			if err := e.store.InsertOrderItemAddon(ctx, tx, addon); err != nil {
				return fmt.Errorf("insert order item addon: %w", err)
			}
		}
	}

	if method == "" {
		method = models.PaymentCashOnCounter
	}
	payment := &models.Payment{
		OrderID: o.ID,
		Amount:  o.TotalAmount,
		Method:  method,
		Status:  models.PaymentPending,
	}
	if err := e.store.InsertPayment(ctx, tx, payment); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	o.Payment = payment
	return nil
}

// afterCommit fires the best-effort side effects. Failures are logged and
// swallowed; the order already exists.
func (e *Engine) afterCommit(ctx context.Context, r *Result) {
	o, m, sub := r.Order, r.Merchant, r.sub

	if e.publisher != nil {
		event := &models.OrderCreatedEvent{
			MessageID:    uuid.NewString(),
			MerchantID:   m.ID,
			MerchantCode: m.Code,
			OrderNumber:  o.OrderNumber,
			Origin:       o.Origin,
			OrderType:    o.OrderType,
			TotalAmount:  o.TotalAmount.InexactFloat64(),
			ItemCount:    len(o.Items),
			Participants: sub.Participants,
			CreatedAt:    o.PlacedAt,
		}
		if err := e.publisher.PublishOrderCreated(ctx, event); err != nil {
			e.logger.Error("order_event_publish_failed", "Failed to publish order created event", "", err, map[string]interface{}{
				"order_number": o.OrderNumber,
			})
		}

		for _, item := range r.Depleted {
			alert := &models.StockDepletedEvent{
				MessageID:    uuid.NewString(),
				MerchantID:   m.ID,
				MerchantCode: m.Code,
				ItemKind:     item.Kind,
				ItemID:       item.ID,
				ItemName:     item.Name,
				DepletedAt:   o.PlacedAt,
			}
			if err := e.publisher.PublishStockDepleted(ctx, alert); err != nil {
				e.logger.Error("stock_alert_publish_failed", "Failed to publish stock depleted event", "", err, map[string]interface{}{
					"item_name": item.Name,
				})
			}
		}
	}

	if sub.CustomerID != nil {
		if err := e.store.BumpCustomerStats(ctx, *sub.CustomerID, o.TotalAmount, o.PlacedAt); err != nil {
			e.logger.Error("customer_stats_update_failed", "Failed to update customer stats", "", err, map[string]interface{}{
				"customer_id": *sub.CustomerID,
			})
		}
	}

	if e.waitTimes != nil {
		count := 0
		for _, item := range o.Items {
			count += item.Quantity
		}
		e.waitTimes.Record(m.ID, count)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
