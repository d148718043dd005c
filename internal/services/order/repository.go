package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"dineflow/internal/database"
	"dineflow/internal/models"
	"dineflow/internal/schedule"
)

// Repository implements Store on PostgreSQL. Lookups that find nothing
// return (nil, nil); callers decide whether that is a 404 or a reason to
// create the row.
type Repository struct {
	db *database.DB
}

// NewRepository creates a Store backed by the given database.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

func (r *Repository) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return r.db.WithinTx(ctx, fn)
}

func (r *Repository) MerchantByID(ctx context.Context, id int64) (*models.Merchant, error) {
	return scanMerchant(r.db.QueryRow(ctx, database.GetMerchantByIDSQL, id))
}

func (r *Repository) MerchantByCode(ctx context.Context, code string) (*models.Merchant, error) {
	return scanMerchant(r.db.QueryRow(ctx, database.GetMerchantByCodeSQL, code))
}

func scanMerchant(row pgx.Row) (*models.Merchant, error) {
	var m models.Merchant
	var taxPct, svcPct, pkgAmt pgtype.Numeric

	err := row.Scan(
		&m.ID, &m.Code, &m.Name, &m.Currency, &m.Timezone, &m.IsActive,
		&m.EnableTax, &taxPct, &m.EnableServiceCharge, &svcPct,
		&m.EnablePackagingFee, &pkgAmt,
		&m.IsDineInEnabled, &m.IsTakeawayEnabled, &m.IsDeliveryEnabled,
		&m.DineInStartTime, &m.DineInEndTime,
		&m.TakeawayStartTime, &m.TakeawayEndTime,
		&m.DeliveryStartTime, &m.DeliveryEndTime,
		&m.UsePerDayModeSchedule, &m.IsManualOverride, &m.IsOpen,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan merchant: %w", err)
	}

	m.TaxPercentage = database.DecimalFromNumeric(taxPct)
	m.ServiceChargePercentage = database.DecimalFromNumeric(svcPct)
	m.PackagingFeeAmount = database.DecimalFromNumeric(pkgAmt)
	return &m, nil
}

func (r *Repository) ScheduleFor(ctx context.Context, m *models.Merchant, date string) (*schedule.Schedule, error) {
	sched := &schedule.Schedule{Merchant: m}

	rows, err := r.db.Query(ctx, database.GetOpeningHoursSQL, m.ID)
	if err != nil {
		return nil, fmt.Errorf("query opening hours: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h models.OpeningHour
		if err := rows.Scan(&h.MerchantID, &h.DayOfWeek, &h.IsClosed, &h.Is24Hours, &h.OpenTime, &h.CloseTime); err != nil {
			return nil, fmt.Errorf("scan opening hour: %w", err)
		}
		sched.OpeningHours = append(sched.OpeningHours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opening hours: %w", err)
	}

	if m.UsePerDayModeSchedule {
		modeRows, err := r.db.Query(ctx, database.GetModeSchedulesSQL, m.ID)
		if err != nil {
			return nil, fmt.Errorf("query mode schedules: %w", err)
		}
		defer modeRows.Close()
		for modeRows.Next() {
			var ms models.ModeSchedule
			var mode string
			if err := modeRows.Scan(&ms.MerchantID, &mode, &ms.DayOfWeek, &ms.IsActive, &ms.StartTime, &ms.EndTime); err != nil {
				return nil, fmt.Errorf("scan mode schedule: %w", err)
			}
			ms.Mode = models.OrderType(mode)
			sched.ModeSchedules = append(sched.ModeSchedules, ms)
		}
		if err := modeRows.Err(); err != nil {
			return nil, fmt.Errorf("iterate mode schedules: %w", err)
		}
	}

	var sh models.SpecialHour
	var shDate pgtype.Date
	err = r.db.QueryRow(ctx, database.GetSpecialHourSQL, m.ID, date).Scan(
		&sh.MerchantID, &shDate, &sh.Name, &sh.IsClosed, &sh.OpenTime, &sh.CloseTime,
		&sh.IsDineInEnabled, &sh.IsTakeawayEnabled, &sh.IsDeliveryEnabled,
		&sh.DineInStartTime, &sh.DineInEndTime,
		&sh.TakeawayStartTime, &sh.TakeawayEndTime,
		&sh.DeliveryStartTime, &sh.DeliveryEndTime,
	)
	switch {
	case err == nil:
		sh.Date = shDate.Time.Format("2006-01-02")
		sched.Special = &sh
	case errors.Is(err, pgx.ErrNoRows):
		// no override for this date
	default:
		return nil, fmt.Errorf("query special hours: %w", err)
	}

	return sched, nil
}

func (r *Repository) MenusByID(ctx context.Context, merchantID int64, ids []int64) (map[int64]*models.CatalogItem, error) {
	rows, err := r.db.Query(ctx, database.GetMenusByIDsSQL, merchantID, ids)
	if err != nil {
		return nil, fmt.Errorf("query menus: %w", err)
	}
	defer rows.Close()
	return scanCatalogItems(rows, models.KindMenu)
}

func (r *Repository) AddonsByID(ctx context.Context, merchantID int64, ids []int64) (map[int64]*models.CatalogItem, error) {
	rows, err := r.db.Query(ctx, database.GetAddonsByIDsSQL, merchantID, ids)
	if err != nil {
		return nil, fmt.Errorf("query addon items: %w", err)
	}
	defer rows.Close()
	return scanCatalogItems(rows, models.KindAddon)
}

func scanCatalogItems(rows pgx.Rows, kind models.ItemKind) (map[int64]*models.CatalogItem, error) {
	items := make(map[int64]*models.CatalogItem)
	for rows.Next() {
		var item models.CatalogItem
		var price pgtype.Numeric
		var stockQty *int32
		if err := rows.Scan(&item.ID, &item.MerchantID, &item.Name, &price, &item.IsActive, &item.TrackStock, &stockQty); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		item.Kind = kind
		item.Price = database.DecimalFromNumeric(price)
		if stockQty != nil {
			qty := int(*stockQty)
			item.StockQty = &qty
		}
		items[item.ID] = &item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog items: %w", err)
	}
	return items, nil
}

func (r *Repository) PromoWindows(ctx context.Context, merchantID int64, menuIDs []int64, on time.Time) ([]models.PromotionWindow, error) {
	rows, err := r.db.Query(ctx, database.GetActivePromoPricesSQL, merchantID, menuIDs, on.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var windows []models.PromotionWindow
	for rows.Next() {
		var w models.PromotionWindow
		var price pgtype.Numeric
		var start, end pgtype.Date
		if err := rows.Scan(&w.ID, &w.MenuID, &price, &start, &end); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		w.PromoPrice = database.DecimalFromNumeric(price)
		w.StartDate = start.Time
		w.EndDate = end.Time
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions: %w", err)
	}
	return windows, nil
}

func (r *Repository) CustomerByEmail(ctx context.Context, merchantID int64, email string) (*models.Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, database.GetCustomerByEmailSQL, merchantID, email))
}

func (r *Repository) CustomerByPhone(ctx context.Context, merchantID int64, phone string) (*models.Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, database.GetCustomerByPhoneSQL, merchantID, phone))
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	var spent pgtype.Numeric
	err := row.Scan(
		&c.ID, &c.MerchantID, &c.Name, &c.Email, &c.Phone,
		&c.TotalOrders, &spent, &c.LastOrderAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	c.TotalSpent = database.DecimalFromNumeric(spent)
	return &c, nil
}

func (r *Repository) CreateCustomer(ctx context.Context, c *models.Customer) error {
	err := r.db.QueryRow(ctx, database.InsertCustomerSQL, c.MerchantID, c.Name, c.Email, c.Phone).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *Repository) UpdateCustomerContact(ctx context.Context, id int64, name, phone string) error {
	if err := r.db.Exec(ctx, database.UpdateCustomerContactSQL, id, name, phone); err != nil {
		return fmt.Errorf("update customer contact: %w", err)
	}
	return nil
}

func (r *Repository) BumpCustomerStats(ctx context.Context, id int64, total decimal.Decimal, at time.Time) error {
	if err := r.db.Exec(ctx, database.BumpCustomerStatsSQL, id, database.NumericFromDecimal(total), at); err != nil {
		return fmt.Errorf("bump customer stats: %w", err)
	}
	return nil
}

func (r *Repository) OrderNumberTaken(ctx context.Context, tx pgx.Tx, merchantID int64, number string, from, to time.Time) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, database.OrderNumberExistsSQL, merchantID, number, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("check order number: %w", err)
	}
	return exists, nil
}

func (r *Repository) DecrementStock(ctx context.Context, tx pgx.Tx, kind models.ItemKind, id int64, qty int) (int, bool, error) {
	query := database.DecrementMenuStockSQL
	if kind == models.KindAddon {
		query = database.DecrementAddonStockSQL
	}

	var newQty int32
	err := tx.QueryRow(ctx, query, qty, id).Scan(&newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("decrement stock: %w", err)
	}
	return int(newQty), true, nil
}

func (r *Repository) DeactivateItem(ctx context.Context, tx pgx.Tx, kind models.ItemKind, id int64) error {
	query := database.DeactivateMenuSQL
	if kind == models.KindAddon {
		query = database.DeactivateAddonSQL
	}
	if _, err := tx.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("deactivate item: %w", err)
	}
	return nil
}

func (r *Repository) InsertOrder(ctx context.Context, tx pgx.Tx, o *models.Order) error {
	err := tx.QueryRow(ctx, database.InsertOrderSQL,
		o.MerchantID, o.CustomerID, o.OrderNumber, o.OrderType, o.TableNumber,
		o.Status, o.Origin,
		database.NumericFromDecimal(o.Subtotal), database.NumericFromDecimal(o.TaxAmount), database.NumericFromDecimal(o.ServiceChargeAmount),
		database.NumericFromDecimal(o.PackagingFeeAmount), database.NumericFromDecimal(o.DeliveryFeeAmount), database.NumericFromDecimal(o.TotalAmount),
		o.Notes, o.IsScheduled, o.ScheduledDate, o.ScheduledTime, o.PlacedAt, o.AcceptedAt,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *Repository) InsertOrderItem(ctx context.Context, tx pgx.Tx, item *models.OrderItem) error {
	err := tx.QueryRow(ctx, database.InsertOrderItemSQL,
		item.OrderID, item.MenuID, item.MenuName, database.NumericFromDecimal(item.MenuPrice),
		item.Quantity, database.NumericFromDecimal(item.Subtotal), item.Notes,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *Repository) InsertOrderItemAddon(ctx context.Context, tx pgx.Tx, addon *models.OrderItemAddon) error {
	err := tx.QueryRow(ctx, database.InsertOrderItemAddonSQL,
		addon.OrderItemID, addon.AddonItemID, addon.AddonName, database.NumericFromDecimal(addon.AddonPrice),
		addon.Quantity, database.NumericFromDecimal(addon.Subtotal),
	).Scan(&addon.ID)
	if err != nil {
		return fmt.Errorf("insert order item addon: %w", err)
	}
	return nil
}

func (r *Repository) InsertPayment(ctx context.Context, tx pgx.Tx, p *models.Payment) error {
	err := tx.QueryRow(ctx, database.InsertPaymentSQL, p.OrderID, database.NumericFromDecimal(p.Amount), p.Method).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	p.Status = models.PaymentPending
	return nil
}

