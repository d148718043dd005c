package order

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"dineflow/internal/models"
	"dineflow/internal/schedule"
)

// Store is the persistence surface the assembly engine and its adapters run
// on. Reads outside the assembly transaction go straight to the pool; the
// write methods that make up one order assembly take the transaction they
// must join. The conditional stock decrement is the only concurrency control
// on the whole path.
type Store interface {
	// WithinTx runs fn inside one transaction, rolling back on error.
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error

	MerchantByID(ctx context.Context, id int64) (*models.Merchant, error)
	MerchantByCode(ctx context.Context, code string) (*models.Merchant, error)
	// ScheduleFor loads the merchant's gate inputs for one date: weekly
	// hours, per-day mode schedules, and the special-hour row if any.
	ScheduleFor(ctx context.Context, m *models.Merchant, date string) (*schedule.Schedule, error)

	// MenusByID and AddonsByID return only rows belonging to the merchant,
	// so a cross-tenant reference simply comes back missing.
	MenusByID(ctx context.Context, merchantID int64, ids []int64) (map[int64]*models.CatalogItem, error)
	AddonsByID(ctx context.Context, merchantID int64, ids []int64) (map[int64]*models.CatalogItem, error)
	// PromoWindows returns windows of enabled promotions covering the given
	// menu ids on the given day, ascending window id.
	PromoWindows(ctx context.Context, merchantID int64, menuIDs []int64, on time.Time) ([]models.PromotionWindow, error)

	CustomerByEmail(ctx context.Context, merchantID int64, email string) (*models.Customer, error)
	CustomerByPhone(ctx context.Context, merchantID int64, phone string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) error
	// UpdateCustomerContact refreshes name and phone; empty strings leave the
	// stored value alone.
	UpdateCustomerContact(ctx context.Context, id int64, name, phone string) error
	BumpCustomerStats(ctx context.Context, id int64, total decimal.Decimal, at time.Time) error

	// OrderNumberTaken reports whether the merchant already has an order
	// with this number placed inside [from, to).
	OrderNumberTaken(ctx context.Context, tx pgx.Tx, merchantID int64, number string, from, to time.Time) (bool, error)

	// DecrementStock subtracts qty when the row still tracks stock and has
	// at least qty left. ok is false when the guard rejected the update;
	// newQty is only meaningful when ok.
	DecrementStock(ctx context.Context, tx pgx.Tx, kind models.ItemKind, id int64, qty int) (newQty int, ok bool, err error)
	DeactivateItem(ctx context.Context, tx pgx.Tx, kind models.ItemKind, id int64) error

	InsertOrder(ctx context.Context, tx pgx.Tx, o *models.Order) error
	InsertOrderItem(ctx context.Context, tx pgx.Tx, item *models.OrderItem) error
	InsertOrderItemAddon(ctx context.Context, tx pgx.Tx, addon *models.OrderItemAddon) error
	InsertPayment(ctx context.Context, tx pgx.Tx, p *models.Payment) error
}

// EventPublisher is the slice of the messaging publisher the engine uses for
// post-commit events.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishStockDepleted(ctx context.Context, event *models.StockDepletedEvent) error
}
