package database

// Merchant and schedule queries
const (
	GetMerchantByIDSQL = `
		SELECT id, code, name, currency, timezone, is_active,
			   enable_tax, tax_percentage, enable_service_charge, service_charge_percentage,
			   enable_packaging_fee, packaging_fee_amount,
			   is_dine_in_enabled, is_takeaway_enabled, is_delivery_enabled,
			   dine_in_start_time, dine_in_end_time,
			   takeaway_start_time, takeaway_end_time,
			   delivery_start_time, delivery_end_time,
			   use_per_day_mode_schedule, is_manual_override, is_open,
			   created_at, updated_at
		FROM merchants WHERE id = $1`

	GetMerchantByCodeSQL = `
		SELECT id, code, name, currency, timezone, is_active,
			   enable_tax, tax_percentage, enable_service_charge, service_charge_percentage,
			   enable_packaging_fee, packaging_fee_amount,
			   is_dine_in_enabled, is_takeaway_enabled, is_delivery_enabled,
			   dine_in_start_time, dine_in_end_time,
			   takeaway_start_time, takeaway_end_time,
			   delivery_start_time, delivery_end_time,
			   use_per_day_mode_schedule, is_manual_override, is_open,
			   created_at, updated_at
		FROM merchants WHERE code = $1`

	GetOpeningHoursSQL = `
		SELECT merchant_id, day_of_week, is_closed, is_24_hours, open_time, close_time
		FROM merchant_opening_hours
		WHERE merchant_id = $1
		ORDER BY day_of_week`

	GetSpecialHourSQL = `
		SELECT merchant_id, date, name, is_closed, open_time, close_time,
			   is_dine_in_enabled, is_takeaway_enabled, is_delivery_enabled,
			   dine_in_start_time, dine_in_end_time,
			   takeaway_start_time, takeaway_end_time,
			   delivery_start_time, delivery_end_time
		FROM merchant_special_hours
		WHERE merchant_id = $1 AND date = $2`

	GetModeSchedulesSQL = `
		SELECT merchant_id, mode, day_of_week, is_active, start_time, end_time
		FROM merchant_mode_schedules
		WHERE merchant_id = $1
		ORDER BY mode, day_of_week`
)

// Catalog and promotion queries
const (
	GetMenusByIDsSQL = `
		SELECT id, merchant_id, name, price, is_active, track_stock, stock_qty
		FROM menus
		WHERE merchant_id = $1 AND id = ANY($2) AND deleted_at IS NULL`

	GetAddonsByIDsSQL = `
		SELECT ai.id, ac.merchant_id, ai.name, ai.price, ai.is_active, ai.track_stock, ai.stock_qty
		FROM addon_items ai
		JOIN addon_categories ac ON ac.id = ai.addon_category_id
		WHERE ac.merchant_id = $1 AND ai.id = ANY($2) AND ai.deleted_at IS NULL`

	GetActivePromoPricesSQL = `
		SELECT pi.id, pi.menu_id, pi.promo_price, p.start_date, p.end_date
		FROM promotion_items pi
		JOIN promotions p ON p.id = pi.promotion_id
		WHERE p.merchant_id = $1 AND pi.menu_id = ANY($2)
		  AND p.is_active = true
		  AND p.start_date <= $3 AND p.end_date >= $3
		ORDER BY pi.id`
)

// Stock ledger queries. The WHERE guard on the decrement is the whole
// concurrency story: zero rows affected means a concurrent order won.
const (
	DecrementMenuStockSQL = `
		UPDATE menus
		SET stock_qty = stock_qty - $1, updated_at = NOW()
		WHERE id = $2 AND track_stock = true AND stock_qty >= $1
		RETURNING stock_qty`

	DecrementAddonStockSQL = `
		UPDATE addon_items
		SET stock_qty = stock_qty - $1, updated_at = NOW()
		WHERE id = $2 AND track_stock = true AND stock_qty >= $1
		RETURNING stock_qty`

	DeactivateMenuSQL = `
		UPDATE menus SET is_active = false, updated_at = NOW()
		WHERE id = $1`

	DeactivateAddonSQL = `
		UPDATE addon_items SET is_active = false, updated_at = NOW()
		WHERE id = $1`
)

// Order graph queries
const (
	OrderNumberExistsSQL = `
		SELECT EXISTS(
			SELECT 1 FROM orders
			WHERE merchant_id = $1 AND order_number = $2
			  AND placed_at >= $3 AND placed_at < $4
		)`

	InsertOrderSQL = `
		INSERT INTO orders (
			merchant_id, customer_id, order_number, order_type, table_number,
			status, origin, subtotal, tax_amount, service_charge_amount,
			packaging_fee_amount, delivery_fee_amount, total_amount, notes,
			is_scheduled, scheduled_date, scheduled_time, placed_at, accepted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, menu_id, menu_name, menu_price, quantity, subtotal, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	InsertOrderItemAddonSQL = `
		INSERT INTO order_item_addons (order_item_id, addon_item_id, addon_name, addon_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	InsertPaymentSQL = `
		INSERT INTO payments (order_id, amount, method, status)
		VALUES ($1, $2, $3, 'PENDING')
		RETURNING id, created_at`
)

// Customer queries
const (
	GetCustomerByEmailSQL = `
		SELECT id, merchant_id, name, email, phone, total_orders, total_spent,
			   last_order_at, created_at, updated_at
		FROM customers
		WHERE merchant_id = $1 AND LOWER(email) = LOWER($2)`

	GetCustomerByPhoneSQL = `
		SELECT id, merchant_id, name, email, phone, total_orders, total_spent,
			   last_order_at, created_at, updated_at
		FROM customers
		WHERE merchant_id = $1 AND phone = $2`

	InsertCustomerSQL = `
		INSERT INTO customers (merchant_id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	UpdateCustomerContactSQL = `
		UPDATE customers
		SET name = COALESCE(NULLIF($2, ''), name),
			phone = COALESCE(NULLIF($3, ''), phone),
			updated_at = NOW()
		WHERE id = $1`

	BumpCustomerStatsSQL = `
		UPDATE customers
		SET total_orders = total_orders + 1,
			total_spent = total_spent + $2,
			last_order_at = $3,
			updated_at = NOW()
		WHERE id = $1`
)

// Reservation queries
const (
	GetReservationForUpdateSQL = `
		SELECT id, merchant_id, customer_id, order_id, status, party_size,
			   reservation_date, reservation_time, table_number, notes, preorder,
			   accepted_at, rejected_at, created_at, updated_at
		FROM reservations
		WHERE id = $1 AND merchant_id = $2
		FOR UPDATE`

	AcceptReservationSQL = `
		UPDATE reservations
		SET status = 'ACCEPTED', order_id = $2, accepted_at = NOW(), updated_at = NOW()
		WHERE id = $1`

	RejectReservationSQL = `
		UPDATE reservations
		SET status = 'REJECTED', rejected_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND merchant_id = $2 AND status = 'PENDING'`
)

// Group order session queries
const (
	GetActiveSessionByCodeSQL = `
		SELECT id, session_code, merchant_id, order_id, order_type, table_number,
			   status, max_participants, expires_at, created_at, updated_at
		FROM group_order_sessions
		WHERE session_code = $1 AND status IN ('OPEN', 'LOCKED')
		ORDER BY id DESC
		LIMIT 1`

	GetSessionForUpdateSQL = `
		SELECT id, session_code, merchant_id, order_id, order_type, table_number,
			   status, max_participants, expires_at, created_at, updated_at
		FROM group_order_sessions
		WHERE id = $1
		FOR UPDATE`

	SessionCodeInUseSQL = `
		SELECT EXISTS(
			SELECT 1 FROM group_order_sessions
			WHERE session_code = $1 AND status IN ('OPEN', 'LOCKED')
		)`

	InsertSessionSQL = `
		INSERT INTO group_order_sessions (
			session_code, merchant_id, order_type, table_number, status,
			max_participants, expires_at
		)
		VALUES ($1, $2, $3, $4, 'OPEN', $5, $6)
		RETURNING id, created_at, updated_at`

	UpdateSessionStatusSQL = `
		UPDATE group_order_sessions
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	MarkSessionSubmittedSQL = `
		UPDATE group_order_sessions
		SET status = 'SUBMITTED', order_id = $2, updated_at = NOW()
		WHERE id = $1`

	CountParticipantsSQL = `
		SELECT COUNT(*) FROM group_order_participants WHERE session_id = $1`

	GetParticipantsSQL = `
		SELECT id, session_id, customer_id, name, device_id, is_host, cart,
			   joined_at, updated_at
		FROM group_order_participants
		WHERE session_id = $1
		ORDER BY joined_at, id`

	GetParticipantByDeviceSQL = `
		SELECT id, session_id, customer_id, name, device_id, is_host, cart,
			   joined_at, updated_at
		FROM group_order_participants
		WHERE session_id = $1 AND device_id = $2`

	GetParticipantSQL = `
		SELECT id, session_id, customer_id, name, device_id, is_host, cart,
			   joined_at, updated_at
		FROM group_order_participants
		WHERE id = $1 AND session_id = $2`

	InsertParticipantSQL = `
		INSERT INTO group_order_participants (session_id, customer_id, name, device_id, is_host, cart)
		VALUES ($1, $2, $3, $4, $5, '[]'::jsonb)
		RETURNING id, joined_at, updated_at`

	UpdateParticipantCartSQL = `
		UPDATE group_order_participants
		SET cart = $2, updated_at = NOW()
		WHERE id = $1`

	DeleteParticipantSQL = `
		DELETE FROM group_order_participants WHERE id = $1`

	SetParticipantHostSQL = `
		UPDATE group_order_participants
		SET is_host = $2, updated_at = NOW()
		WHERE id = $1`
)

// Order lookup queries
const (
	ListOrdersSQL = `
		SELECT id, merchant_id, customer_id, order_number, order_type, table_number,
			   status, origin, subtotal, tax_amount, service_charge_amount,
			   packaging_fee_amount, delivery_fee_amount, total_amount, notes,
			   is_scheduled, scheduled_date, scheduled_time, placed_at,
			   accepted_at, ready_at, completed_at, cancelled_at, created_at, updated_at
		FROM orders
		WHERE merchant_id = $1
		ORDER BY placed_at DESC
		LIMIT $2`

	ListOrdersByStatusSQL = `
		SELECT id, merchant_id, customer_id, order_number, order_type, table_number,
			   status, origin, subtotal, tax_amount, service_charge_amount,
			   packaging_fee_amount, delivery_fee_amount, total_amount, notes,
			   is_scheduled, scheduled_date, scheduled_time, placed_at,
			   accepted_at, ready_at, completed_at, cancelled_at, created_at, updated_at
		FROM orders
		WHERE merchant_id = $1 AND status = $2
		ORDER BY placed_at DESC
		LIMIT $3`

	GetOrderByNumberSQL = `
		SELECT id, merchant_id, customer_id, order_number, order_type, table_number,
			   status, origin, subtotal, tax_amount, service_charge_amount,
			   packaging_fee_amount, delivery_fee_amount, total_amount, notes,
			   is_scheduled, scheduled_date, scheduled_time, placed_at,
			   accepted_at, ready_at, completed_at, cancelled_at, created_at, updated_at
		FROM orders
		WHERE merchant_id = $1 AND order_number = $2
		ORDER BY placed_at DESC
		LIMIT 1`

	GetOrderItemsSQL = `
		SELECT id, order_id, menu_id, menu_name, menu_price, quantity, subtotal, notes
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	GetOrderItemAddonsSQL = `
		SELECT a.id, a.order_item_id, a.addon_item_id, a.addon_name, a.addon_price,
			   a.quantity, a.subtotal
		FROM order_item_addons a
		JOIN order_items i ON i.id = a.order_item_id
		WHERE i.order_id = $1
		ORDER BY a.id`

	GetPaymentByOrderSQL = `
		SELECT id, order_id, amount, method, status, paid_at, created_at
		FROM payments
		WHERE order_id = $1
		ORDER BY id DESC
		LIMIT 1`
)
