package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderCreatedEvent is published after an order transaction commits. It is
// best-effort: consumers must tolerate gaps.
type OrderCreatedEvent struct {
	MessageID    string      `json:"message_id"`
	MerchantID   int64       `json:"merchant_id"`
	MerchantCode string      `json:"merchant_code"`
	OrderNumber  string      `json:"order_number"`
	Origin       OrderOrigin `json:"origin"`
	OrderType    OrderType   `json:"order_type"`
	TotalAmount  float64     `json:"total_amount"`
	ItemCount    int         `json:"item_count"`
	Participants int         `json:"participants,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// StockDepletedEvent is published after commit for every tracked item a
// transaction drove to zero.
type StockDepletedEvent struct {
	MessageID    string   `json:"message_id"`
	MerchantID   int64    `json:"merchant_id"`
	MerchantCode string   `json:"merchant_code"`
	ItemKind     ItemKind `json:"item_kind"`
	ItemID       int64    `json:"item_id"`
	ItemName     string   `json:"item_name"`
	DepletedAt   time.Time `json:"depleted_at"`
}

// OrderRoutingKey builds the topic routing key for order-created events,
// e.g. "orders.created.pos".
func OrderRoutingKey(origin OrderOrigin) string {
	return fmt.Sprintf("orders.created.%s", strings.ToLower(string(origin)))
}
