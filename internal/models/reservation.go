package models

import (
	"encoding/json"
	"time"
)

// ReservationStatus is the lifecycle state of a table reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationAccepted  ReservationStatus = "ACCEPTED"
	ReservationRejected  ReservationStatus = "REJECTED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a table booking that may carry a preorder cart. Accepting
// a pending reservation assembles the preorder into an order and links the
// two in the same transaction.
type Reservation struct {
	ID              int64
	MerchantID      int64
	CustomerID      *int64
	OrderID         *int64
	Status          ReservationStatus
	PartySize       int
	ReservationDate string
	ReservationTime string
	TableNumber     *string
	Notes           *string
	Preorder        []byte
	AcceptedAt      *time.Time
	RejectedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PreorderItems decodes the stored preorder payload into cart lines. An
// empty or null payload yields no lines and no error; a reservation without
// a preorder still produces a zero-total order on acceptance.
func (r *Reservation) PreorderItems() ([]CartItem, error) {
	if len(r.Preorder) == 0 || string(r.Preorder) == "null" {
		return nil, nil
	}
	var items []CartItem
	if err := json.Unmarshal(r.Preorder, &items); err != nil {
		return nil, err
	}
	return items, nil
}
