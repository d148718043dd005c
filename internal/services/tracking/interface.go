package tracking

import (
	"context"

	"dineflow/internal/models"
)

// Store is the read surface for merchant-side order lookups. An empty
// status lists every recent order.
type Store interface {
	Orders(ctx context.Context, merchantID int64, status models.OrderStatus, limit int) ([]models.Order, error)
	// OrderByNumber returns the full order graph (items, addons, payment),
	// or nil when the merchant has no such order.
	OrderByNumber(ctx context.Context, merchantID int64, number string) (*models.Order, error)
}
