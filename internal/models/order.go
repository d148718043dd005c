package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType is the fulfillment mode of an order.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
	OrderTypeDelivery OrderType = "DELIVERY"
)

// ParseOrderType validates a raw order-type string.
func ParseOrderType(s string) (OrderType, bool) {
	switch OrderType(s) {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return OrderType(s), true
	default:
		return "", false
	}
}

// OrderStatus is the lifecycle state of an order. The engine only ever
// creates orders in StatusPending or StatusAccepted; every later transition
// belongs to the fulfillment workflow.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusAccepted, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// OrderOrigin identifies which adapter created an order.
type OrderOrigin string

const (
	OriginPOS         OrderOrigin = "POS"
	OriginOnline      OrderOrigin = "ONLINE"
	OriginReservation OrderOrigin = "RESERVATION"
	OriginGroup       OrderOrigin = "GROUP"
)

// PaymentMethod is how an order is expected to be paid.
type PaymentMethod string

const (
	PaymentCashOnCounter PaymentMethod = "CASH_ON_COUNTER"
	PaymentOnline        PaymentMethod = "ONLINE"
)

// PaymentStatus is the settlement state of a payment. The engine only
// creates rows in PaymentPending.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Order is the aggregate the engine persists in one transaction. Monetary
// components are each rounded to 2 places before summation and are immutable
// once the row exists.
type Order struct {
	ID          int64
	MerchantID  int64
	CustomerID  *int64
	OrderNumber string
	OrderType   OrderType
	TableNumber *string
	Status      OrderStatus
	Origin      OrderOrigin

	Subtotal            decimal.Decimal
	TaxAmount           decimal.Decimal
	ServiceChargeAmount decimal.Decimal
	PackagingFeeAmount  decimal.Decimal
	DeliveryFeeAmount   decimal.Decimal
	TotalAmount         decimal.Decimal

	Notes         *string
	IsScheduled   bool
	ScheduledDate *string
	ScheduledTime *string

	PlacedAt    time.Time
	AcceptedAt  *time.Time
	ReadyAt     *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items   []OrderItem
	Payment *Payment
}

// OrderItem is a denormalized snapshot of one cart line at order time;
// later catalog changes never touch it.
type OrderItem struct {
	ID        int64
	OrderID   int64
	MenuID    int64
	MenuName  string
	MenuPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
	Notes     *string

	Addons []OrderItemAddon
}

// OrderItemAddon is the addon-level snapshot under an OrderItem.
type OrderItemAddon struct {
	ID          int64
	OrderItemID int64
	AddonItemID int64
	AddonName   string
	AddonPrice  decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

// Payment is the pending settlement record created with every order.
type Payment struct {
	ID        int64
	OrderID   int64
	Amount    decimal.Decimal
	Method    PaymentMethod
	Status    PaymentStatus
	PaidAt    *time.Time
	CreatedAt time.Time
}
