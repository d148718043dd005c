package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a merchant-scoped customer record. The engine only reads the
// id during assembly and bumps the lifetime counters after commit.
type Customer struct {
	ID          int64
	MerchantID  int64
	Name        string
	Email       *string
	Phone       *string
	TotalOrders int
	TotalSpent  decimal.Decimal
	LastOrderAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
