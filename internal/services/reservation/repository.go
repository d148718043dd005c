package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dineflow/internal/database"
	"dineflow/internal/models"
	"dineflow/internal/services/order"
)

// Repository reads and mutates reservation rows. It embeds the order
// repository for the merchant lookup and transaction plumbing shared with
// the assembly engine.
type Repository struct {
	*order.Repository
	db *database.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *database.DB) *Repository {
	return &Repository{Repository: order.NewRepository(db), db: db}
}

// ReservationForUpdate loads a reservation and locks its row for the rest of
// the transaction. Returns nil when no row matches.
func (r *Repository) ReservationForUpdate(ctx context.Context, tx pgx.Tx, id, merchantID int64) (*models.Reservation, error) {
	var res models.Reservation
	err := tx.QueryRow(ctx, database.GetReservationForUpdateSQL, id, merchantID).Scan(
		&res.ID, &res.MerchantID, &res.CustomerID, &res.OrderID, &res.Status,
		&res.PartySize, &res.ReservationDate, &res.ReservationTime,
		&res.TableNumber, &res.Notes, &res.Preorder,
		&res.AcceptedAt, &res.RejectedAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation %d: %w", id, err)
	}
	return &res, nil
}

// LinkOrder stamps the reservation ACCEPTED and attaches the assembled order.
func (r *Repository) LinkOrder(ctx context.Context, tx pgx.Tx, reservationID, orderID int64) error {
	if _, err := tx.Exec(ctx, database.AcceptReservationSQL, reservationID, orderID); err != nil {
		return fmt.Errorf("accept reservation %d: %w", reservationID, err)
	}
	return nil
}

// MarkRejected stamps the reservation REJECTED. The statement carries its own
// PENDING guard so a concurrent accept cannot be overwritten.
func (r *Repository) MarkRejected(ctx context.Context, tx pgx.Tx, reservationID, merchantID int64) error {
	if _, err := tx.Exec(ctx, database.RejectReservationSQL, reservationID, merchantID); err != nil {
		return fmt.Errorf("reject reservation %d: %w", reservationID, err)
	}
	return nil
}
