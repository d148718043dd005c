package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"dineflow/internal/database"
	"dineflow/internal/models"
)

// Repository implements Store on PostgreSQL.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

func (r *Repository) Orders(ctx context.Context, merchantID int64, status models.OrderStatus, limit int) ([]models.Order, error) {
	var rows pgx.Rows
	var err error
	if status == "" {
		rows, err = r.db.Query(ctx, database.ListOrdersSQL, merchantID, limit)
	} else {
		rows, err = r.db.Query(ctx, database.ListOrdersByStatusSQL, merchantID, status, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *Repository) OrderByNumber(ctx context.Context, merchantID int64, number string) (*models.Order, error) {
	rows, err := r.db.Query(ctx, database.GetOrderByNumberSQL, merchantID, number)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", number, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	order, err := scanOrder(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	if err := r.loadPayment(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) loadItems(ctx context.Context, order *models.Order) error {
	rows, err := r.db.Query(ctx, database.GetOrderItemsSQL, order.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]int)
	for rows.Next() {
		var item models.OrderItem
		var price, subtotal pgtype.Numeric
		err := rows.Scan(&item.ID, &item.OrderID, &item.MenuID, &item.MenuName,
			&price, &item.Quantity, &subtotal, &item.Notes)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.MenuPrice = database.DecimalFromNumeric(price)
		item.Subtotal = database.DecimalFromNumeric(subtotal)
		byID[item.ID] = len(order.Items)
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	addonRows, err := r.db.Query(ctx, database.GetOrderItemAddonsSQL, order.ID)
	if err != nil {
		return fmt.Errorf("load order item addons: %w", err)
	}
	defer addonRows.Close()

	for addonRows.Next() {
		var addon models.OrderItemAddon
		var price, subtotal pgtype.Numeric
		err := addonRows.Scan(&addon.ID, &addon.OrderItemID, &addon.AddonItemID,
			&addon.AddonName, &price, &addon.Quantity, &subtotal)
		if err != nil {
			return fmt.Errorf("scan order item addon: %w", err)
		}
		addon.AddonPrice = database.DecimalFromNumeric(price)
		addon.Subtotal = database.DecimalFromNumeric(subtotal)
		if idx, ok := byID[addon.OrderItemID]; ok {
			order.Items[idx].Addons = append(order.Items[idx].Addons, addon)
		}
	}
	return addonRows.Err()
}

func (r *Repository) loadPayment(ctx context.Context, order *models.Order) error {
	var p models.Payment
	var amount pgtype.Numeric
	err := r.db.QueryRow(ctx, database.GetPaymentByOrderSQL, order.ID).Scan(
		&p.ID, &p.OrderID, &amount, &p.Method, &p.Status, &p.PaidAt, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load payment: %w", err)
	}
	p.Amount = database.DecimalFromNumeric(amount)
	order.Payment = &p
	return nil
}

func scanOrder(rows pgx.Rows) (*models.Order, error) {
	var o models.Order
	var subtotal, tax, service, packaging, delivery, total pgtype.Numeric
	err := rows.Scan(
		&o.ID, &o.MerchantID, &o.CustomerID, &o.OrderNumber, &o.OrderType,
		&o.TableNumber, &o.Status, &o.Origin,
		&subtotal, &tax, &service, &packaging, &delivery, &total,
		&o.Notes, &o.IsScheduled, &o.ScheduledDate, &o.ScheduledTime,
		&o.PlacedAt, &o.AcceptedAt, &o.ReadyAt, &o.CompletedAt, &o.CancelledAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Subtotal = database.DecimalFromNumeric(subtotal)
	o.TaxAmount = database.DecimalFromNumeric(tax)
	o.ServiceChargeAmount = database.DecimalFromNumeric(service)
	o.PackagingFeeAmount = database.DecimalFromNumeric(packaging)
	o.DeliveryFeeAmount = database.DecimalFromNumeric(delivery)
	o.TotalAmount = database.DecimalFromNumeric(total)
	return &o, nil
}
