package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// GroupSessionStatus is the lifecycle state of a pooled group-order session.
type GroupSessionStatus string

const (
	GroupSessionOpen      GroupSessionStatus = "OPEN"
	GroupSessionLocked    GroupSessionStatus = "LOCKED"
	GroupSessionSubmitted GroupSessionStatus = "SUBMITTED"
	GroupSessionExpired   GroupSessionStatus = "EXPIRED"
	GroupSessionCancelled GroupSessionStatus = "CANCELLED"
)

// GroupOrderSession is a shared cart identified by a short join code. Each
// participant owns an independent sub-cart; submission merges them into one
// order and stamps the session SUBMITTED.
type GroupOrderSession struct {
	ID              int64
	SessionCode     string
	MerchantID      int64
	OrderID         *int64
	OrderType       OrderType
	TableNumber     *string
	Status          GroupSessionStatus
	MaxParticipants int
	ExpiresAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Participants []GroupParticipant
}

// Expired reports whether the session's join window has passed.
func (s *GroupOrderSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// GroupParticipant is one member of a session. Cart holds the participant's
// sub-cart lines as JSON until submission.
type GroupParticipant struct {
	ID         int64
	SessionID  int64
	CustomerID *int64
	Name       string
	DeviceID   string
	IsHost     bool
	Cart       []byte
	JoinedAt   time.Time
	UpdatedAt  time.Time
}

// CartItems decodes the participant's stored sub-cart. An empty payload is
// an empty cart, not an error.
func (p *GroupParticipant) CartItems() ([]CartItem, error) {
	if len(p.Cart) == 0 || string(p.Cart) == "null" {
		return nil, nil
	}
	var items []CartItem
	if err := json.Unmarshal(p.Cart, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ParticipantShare is one participant's slice of a submitted group order:
// the subtotal they contributed plus their proportional share of every fee
// component. Shares for each component sum exactly to the order's component.
type ParticipantShare struct {
	ParticipantID  int64
	Name           string
	Subtotal       decimal.Decimal
	TaxShare       decimal.Decimal
	ServiceShare   decimal.Decimal
	PackagingShare decimal.Decimal
	DeliveryShare  decimal.Decimal
	TotalShare     decimal.Decimal
}

// BillSplit is the per-participant breakdown returned alongside a submitted
// group order.
type BillSplit struct {
	OrderTotal decimal.Decimal
	Shares     []ParticipantShare
}
