// Package tracking serves merchant-side order lookups: the recent-orders
// list a counter screen polls, and the full order graph behind one order
// number. Read-only; every mutation belongs to the assembly engine.
package tracking

import (
	"context"

	"dineflow/internal/logger"
	"dineflow/internal/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service answers merchant order lookups.
type Service struct {
	store  Store
	logger *logger.Logger
}

// NewService creates a new tracking service
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log,
	}
}

// ListOrders returns the merchant's most recent orders, newest first,
// optionally filtered by status.
func (s *Service) ListOrders(ctx context.Context, merchantID int64, rawStatus string, limit int) ([]models.Order, error) {
	if merchantID <= 0 {
		return nil, models.NewValidationError("merchantId", "is required")
	}

	var status models.OrderStatus
	if rawStatus != "" {
		parsed, ok := models.ParseOrderStatus(rawStatus)
		if !ok {
			return nil, models.NewValidationError("status", "is not a known order status")
		}
		status = parsed
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return s.store.Orders(ctx, merchantID, status, limit)
}

// GetOrder returns the full graph behind one order number.
func (s *Service) GetOrder(ctx context.Context, merchantID int64, number string) (*models.Order, error) {
	if merchantID <= 0 {
		return nil, models.NewValidationError("merchantId", "is required")
	}
	if number == "" {
		return nil, models.NewValidationError("orderNumber", "is required")
	}

	order, err := s.store.OrderByNumber(ctx, merchantID, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "order not found")
	}
	return order, nil
}
