// Package reservation accepts and rejects table bookings. Accepting a
// pending reservation assembles its stored preorder into a dine-in order in
// the same transaction that flips the reservation row, so the two can never
// disagree.
package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"dineflow/internal/logger"
	"dineflow/internal/models"
	"dineflow/internal/services/order"
)

// Store is the persistence surface the reservation flows need.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	MerchantByID(ctx context.Context, id int64) (*models.Merchant, error)
	ReservationForUpdate(ctx context.Context, tx pgx.Tx, id, merchantID int64) (*models.Reservation, error)
	LinkOrder(ctx context.Context, tx pgx.Tx, reservationID, orderID int64) error
	MarkRejected(ctx context.Context, tx pgx.Tx, reservationID, merchantID int64) error
}

// Service drives the accept and reject flows.
type Service struct {
	store  Store
	engine *order.Engine
	logger *logger.Logger
	now    func() time.Time
}

func NewService(store Store, engine *order.Engine, log *logger.Logger) *Service {
	return &Service{store: store, engine: engine, logger: log, now: time.Now}
}

// Accept turns a pending reservation into an accepted dine-in order built
// from its preorder cart. The reservation row is locked, checked and updated
// inside the assembly transaction; any rejection rolls everything back.
func (s *Service) Accept(ctx context.Context, merchantID, reservationID int64) (*order.Result, error) {
	merchant, err := s.lookupMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Run(ctx, func(ctx context.Context, tx pgx.Tx) (*order.Submission, error) {
		res, err := s.store.ReservationForUpdate(ctx, tx, reservationID, merchant.ID)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, models.NewOrderError(models.ErrCodeNotFound, "reservation not found")
		}
		if res.Status != models.ReservationPending {
			return nil, models.NewOrderError(models.ErrCodeReservationNotPending, "reservation is no longer pending")
		}

		instant, err := time.ParseInLocation("2006-01-02 15:04",
			res.ReservationDate+" "+res.ReservationTime, merchant.Location())
		if err != nil {
			return nil, fmt.Errorf("parse reservation time: %w", err)
		}
		if !instant.After(s.now().In(merchant.Location())) {
			return nil, models.NewOrderError(models.ErrCodeReservationTimePast, "reservation time has already passed")
		}

		cart, err := preorderCart(res)
		if err != nil {
			return nil, err
		}

		return &order.Submission{
			Merchant:      merchant,
			Cart:          cart,
			Origin:        models.OriginReservation,
			Status:        models.StatusAccepted,
			PaymentMethod: models.PaymentCashOnCounter,
			CustomerID:    res.CustomerID,
			Scheduled:     &order.ScheduledSlot{Date: res.ReservationDate, Time: res.ReservationTime},
			PostPersist: func(ctx context.Context, tx pgx.Tx, o *models.Order) error {
				return s.store.LinkOrder(ctx, tx, res.ID, o.ID)
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation_accepted", "Reservation accepted", "", map[string]interface{}{
		"reservation_id": reservationID,
		"order_number":   result.Order.OrderNumber,
	})
	return result, nil
}

// Reject marks a pending reservation rejected. No order is created.
func (s *Service) Reject(ctx context.Context, merchantID, reservationID int64) error {
	merchant, err := s.lookupMerchant(ctx, merchantID)
	if err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		res, err := s.store.ReservationForUpdate(ctx, tx, reservationID, merchant.ID)
		if err != nil {
			return err
		}
		if res == nil {
			return models.NewOrderError(models.ErrCodeNotFound, "reservation not found")
		}
		if res.Status != models.ReservationPending {
			return models.NewOrderError(models.ErrCodeReservationNotPending, "reservation is no longer pending")
		}
		return s.store.MarkRejected(ctx, tx, res.ID, merchant.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reservation_rejected", "Reservation rejected", "", map[string]interface{}{
		"reservation_id": reservationID,
	})
	return nil
}

func (s *Service) lookupMerchant(ctx context.Context, merchantID int64) (*models.Merchant, error) {
	if merchantID <= 0 {
		return nil, models.NewValidationError("merchantId", "is required")
	}
	merchant, err := s.store.MerchantByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil || !merchant.IsActive {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "merchant not found")
	}
	return merchant, nil
}

// preorderCart decodes the stored preorder into a dine-in cart. An empty
// preorder is a legitimate zero-total booking, so only non-empty carts get
// the full line validation.
func preorderCart(res *models.Reservation) (*models.Cart, error) {
	items, err := res.PreorderItems()
	if err != nil {
		return nil, models.NewValidationError("preorder", "stored preorder is not a valid cart")
	}

	cart := &models.Cart{
		OrderType: string(models.OrderTypeDineIn),
		Items:     items,
	}
	if res.TableNumber != nil {
		cart.TableNumber = *res.TableNumber
	}
	if res.Notes != nil {
		cart.Notes = *res.Notes
	}

	cart.Normalize()
	if len(cart.Items) > 0 {
		if err := cart.Validate(); err != nil {
			return nil, err
		}
	}
	return cart, nil
}
