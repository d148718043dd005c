// Package group runs shared group-order sessions: a host opens a session
// under a short join code, participants attach their own sub-carts, and the
// host submits the merged cart through the assembly engine as one order.
package group

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"dineflow/internal/cache"
	"dineflow/internal/database"
	"dineflow/internal/logger"
	"dineflow/internal/models"
	"dineflow/internal/pricing"
	"dineflow/internal/services/order"
)

// Session codes avoid characters that read ambiguously over a table.
const (
	sessionCodeCharset  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	sessionCodeAttempts = 10
	sessionTTL          = 2 * time.Hour

	defaultMaxParticipants = 8
	maxParticipantsCap     = 20
	maxTableNumberLen      = 16

	joinAttemptLimit  = 3
	joinAttemptWindow = time.Minute
)

// Store is the persistence surface for group sessions. It includes the full
// assembly store because submission and customer resolution run on the same
// repository.
type Store interface {
	order.Store

	// Pool exposes the pool-backed read surface for queries that run
	// outside a transaction.
	Pool() database.Querier

	ActiveSessionByCode(ctx context.Context, code string) (*models.GroupOrderSession, error)
	SessionForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*models.GroupOrderSession, error)
	SessionCodeInUse(ctx context.Context, tx pgx.Tx, code string) (bool, error)
	InsertSession(ctx context.Context, tx pgx.Tx, s *models.GroupOrderSession) error
	SetSessionStatus(ctx context.Context, tx pgx.Tx, id int64, status models.GroupSessionStatus) error
	MarkSubmitted(ctx context.Context, tx pgx.Tx, id, orderID int64) error

	Participants(ctx context.Context, q database.Querier, sessionID int64) ([]models.GroupParticipant, error)
	ParticipantByDevice(ctx context.Context, q database.Querier, sessionID int64, deviceID string) (*models.GroupParticipant, error)
	Participant(ctx context.Context, q database.Querier, id, sessionID int64) (*models.GroupParticipant, error)
	CountParticipants(ctx context.Context, q database.Querier, sessionID int64) (int, error)
	InsertParticipant(ctx context.Context, tx pgx.Tx, p *models.GroupParticipant) error
	UpdateParticipantCart(ctx context.Context, tx pgx.Tx, id int64, cart []byte) error
	DeleteParticipant(ctx context.Context, tx pgx.Tx, id int64) error
	SetParticipantHost(ctx context.Context, tx pgx.Tx, id int64, isHost bool) error
}

// Service drives the session lifecycle and the submit path.
type Service struct {
	store    Store
	engine   *order.Engine
	limiter  *cache.RateLimiter
	logger   *logger.Logger
	now      func() time.Time
	randText func(n int) (string, error)
}

// NewService wires the session flows. The rate limiter guards the join
// endpoint per device.
func NewService(store Store, engine *order.Engine, limiterStore *cache.Store, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		engine:   engine,
		limiter:  cache.NewRateLimiter(limiterStore, joinAttemptLimit, joinAttemptWindow),
		logger:   log,
		now:      time.Now,
		randText: sessionCodeText,
	}
}

// CreateSessionRequest opens a new session. The creator becomes the host.
type CreateSessionRequest struct {
	MerchantCode    string               `json:"merchantCode"`
	OrderType       string               `json:"orderType"`
	TableNumber     string               `json:"tableNumber,omitempty"`
	MaxParticipants int                  `json:"maxParticipants,omitempty"`
	DeviceID        string               `json:"deviceId"`
	Name            string               `json:"name,omitempty"`
	Customer        *models.CartCustomer `json:"customer,omitempty"`
}

// JoinRequest attaches a device to an open session.
type JoinRequest struct {
	DeviceID string               `json:"deviceId"`
	Name     string               `json:"name,omitempty"`
	Customer *models.CartCustomer `json:"customer,omitempty"`
}

// UpdateCartRequest replaces a participant's sub-cart.
type UpdateCartRequest struct {
	DeviceID string            `json:"deviceId"`
	Items    []models.CartItem `json:"items"`
}

// MemberRequest identifies the acting device for leave, kick, transfer and
// submit calls.
type MemberRequest struct {
	DeviceID string `json:"deviceId"`
}

// SessionView is a session with its members and their advisory list-price
// subtotals, pre-fee and pre-promotion.
type SessionView struct {
	Session      *models.GroupOrderSession
	Merchant     *models.Merchant
	Participants []ParticipantSummary
}

// ParticipantSummary is one member plus the advisory subtotal of their
// current sub-cart.
type ParticipantSummary struct {
	ID        int64
	Name      string
	IsHost    bool
	JoinedAt  time.Time
	ItemCount int
	Subtotal  decimal.Decimal
}

// SubmitResult pairs the assembled order with the per-participant bill split.
type SubmitResult struct {
	Order *order.Result
	Split *models.BillSplit
}

// Create opens a session for the merchant and seats the creator as host.
func (s *Service) Create(ctx context.Context, req *CreateSessionRequest) (*SessionView, error) {
	if req.DeviceID == "" {
		return nil, models.NewValidationError("deviceId", "is required")
	}
	merchant, err := s.lookupMerchant(ctx, req.MerchantCode)
	if err != nil {
		return nil, err
	}

	orderType, ok := models.ParseOrderType(req.OrderType)
	if !ok {
		return nil, models.NewValidationError("orderType", "must be one of DINE_IN, TAKEAWAY, DELIVERY")
	}
	if !merchant.ModeEnabled(orderType) {
		return nil, models.ErrInvalidOrderType(string(orderType))
	}
	if len(req.TableNumber) > maxTableNumberLen {
		return nil, models.NewValidationError("tableNumber", fmt.Sprintf("must not exceed %d characters", maxTableNumberLen))
	}

	maxParticipants := req.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = defaultMaxParticipants
	}
	if maxParticipants < 2 || maxParticipants > maxParticipantsCap {
		return nil, models.NewValidationError("maxParticipants", fmt.Sprintf("must be between 2 and %d", maxParticipantsCap))
	}

	customerID, err := order.ResolveCustomer(ctx, s.store, s.logger, merchant, req.Customer)
	if err != nil {
		return nil, err
	}

	session := &models.GroupOrderSession{
		MerchantID:      merchant.ID,
		OrderType:       orderType,
		MaxParticipants: maxParticipants,
		ExpiresAt:       s.now().Add(sessionTTL),
	}
	if req.TableNumber != "" {
		table := req.TableNumber
		session.TableNumber = &table
	}

	host := &models.GroupParticipant{
		CustomerID: customerID,
		Name:       participantName(req.Name, req.Customer),
		DeviceID:   req.DeviceID,
		IsHost:     true,
	}

	err = s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		code, err := s.allocateCode(ctx, tx)
		if err != nil {
			return err
		}
		session.SessionCode = code
		if err := s.store.InsertSession(ctx, tx, session); err != nil {
			return err
		}
		host.SessionID = session.ID
		return s.store.InsertParticipant(ctx, tx, host)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("group_session_created", "Group session created", "", map[string]interface{}{
		"session_code": session.SessionCode,
		"merchant_id":  merchant.ID,
		"order_type":   string(orderType),
	})

	session.Participants = []models.GroupParticipant{*host}
	return &SessionView{
		Session:      session,
		Merchant:     merchant,
		Participants: []ParticipantSummary{summarize(host, decimal.Zero, 0)},
	}, nil
}

// Join seats a device in an open session. A device already seated gets its
// existing participant back; join attempts are rate limited per device.
func (s *Service) Join(ctx context.Context, code string, req *JoinRequest) (*models.GroupParticipant, error) {
	if req.DeviceID == "" {
		return nil, models.NewValidationError("deviceId", "is required")
	}
	if !s.limiter.Allow("join:" + code + ":" + req.DeviceID) {
		return nil, models.NewOrderError(models.ErrCodeRateLimited, "too many join attempts, try again shortly")
	}

	session, err := s.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	merchant, err := s.store.MerchantByID(ctx, session.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "merchant not found")
	}

	customerID, err := order.ResolveCustomer(ctx, s.store, s.logger, merchant, req.Customer)
	if err != nil {
		return nil, err
	}

	var participant *models.GroupParticipant
	err = s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.requireOpen(ctx, tx, session.ID)
		if err != nil {
			return err
		}

		existing, err := s.store.ParticipantByDevice(ctx, tx, locked.ID, req.DeviceID)
		if err != nil {
			return err
		}
		if existing != nil {
			participant = existing
			return nil
		}

		count, err := s.store.CountParticipants(ctx, tx, locked.ID)
		if err != nil {
			return err
		}
		if count >= locked.MaxParticipants {
			return models.NewOrderError(models.ErrCodeSessionNotOpen, "session is full")
		}

		participant = &models.GroupParticipant{
			SessionID:  locked.ID,
			CustomerID: customerID,
			Name:       participantName(req.Name, req.Customer),
			DeviceID:   req.DeviceID,
		}
		return s.store.InsertParticipant(ctx, tx, participant)
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

// UpdateCart replaces the participant's sub-cart. An empty item list clears
// it. Only the owning device may write.
func (s *Service) UpdateCart(ctx context.Context, code string, participantID int64, req *UpdateCartRequest) error {
	if req.DeviceID == "" {
		return models.NewValidationError("deviceId", "is required")
	}

	session, err := s.activeSession(ctx, code)
	if err != nil {
		return err
	}

	lines := models.Cart{OrderType: string(session.OrderType), Items: req.Items}
	lines.Normalize()
	if len(lines.Items) > 0 {
		if err := lines.Validate(); err != nil {
			return err
		}
	}
	payload, err := encodeCart(lines.Items)
	if err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.requireOpen(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		participant, err := s.store.Participant(ctx, tx, participantID, locked.ID)
		if err != nil {
			return err
		}
		if participant == nil {
			return models.NewOrderError(models.ErrCodeNotFound, "participant not found")
		}
		if participant.DeviceID != req.DeviceID {
			return models.NewOrderError(models.ErrCodeForbidden, "cart belongs to another participant")
		}
		return s.store.UpdateParticipantCart(ctx, tx, participant.ID, payload)
	})
}

// Leave removes the calling device's participant. A departing host hands the
// session to the earliest remaining member; the last member leaving cancels
// the session.
func (s *Service) Leave(ctx context.Context, code, deviceID string) error {
	if deviceID == "" {
		return models.NewValidationError("deviceId", "is required")
	}
	session, err := s.activeSession(ctx, code)
	if err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.requireOpen(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		participant, err := s.store.ParticipantByDevice(ctx, tx, locked.ID, deviceID)
		if err != nil {
			return err
		}
		if participant == nil {
			return models.NewOrderError(models.ErrCodeNotFound, "participant not found")
		}
		if err := s.store.DeleteParticipant(ctx, tx, participant.ID); err != nil {
			return err
		}
		if !participant.IsHost {
			return nil
		}

		remaining, err := s.store.Participants(ctx, tx, locked.ID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return s.store.SetSessionStatus(ctx, tx, locked.ID, models.GroupSessionCancelled)
		}
		return s.store.SetParticipantHost(ctx, tx, remaining[0].ID, true)
	})
}

// Kick removes another participant. Host only.
func (s *Service) Kick(ctx context.Context, code string, participantID int64, deviceID string) error {
	if deviceID == "" {
		return models.NewValidationError("deviceId", "is required")
	}
	session, err := s.activeSession(ctx, code)
	if err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.requireOpen(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		actor, err := s.requireHost(ctx, tx, locked.ID, deviceID)
		if err != nil {
			return err
		}
		target, err := s.store.Participant(ctx, tx, participantID, locked.ID)
		if err != nil {
			return err
		}
		if target == nil {
			return models.NewOrderError(models.ErrCodeNotFound, "participant not found")
		}
		if target.ID == actor.ID {
			return models.NewValidationError("participantId", "leave the session instead of removing yourself")
		}
		return s.store.DeleteParticipant(ctx, tx, target.ID)
	})
}

// TransferHost hands host status to another participant. Host only.
func (s *Service) TransferHost(ctx context.Context, code string, participantID int64, deviceID string) error {
	if deviceID == "" {
		return models.NewValidationError("deviceId", "is required")
	}
	session, err := s.activeSession(ctx, code)
	if err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.requireOpen(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		actor, err := s.requireHost(ctx, tx, locked.ID, deviceID)
		if err != nil {
			return err
		}
		target, err := s.store.Participant(ctx, tx, participantID, locked.ID)
		if err != nil {
			return err
		}
		if target == nil {
			return models.NewOrderError(models.ErrCodeNotFound, "participant not found")
		}
		if target.ID == actor.ID {
			return models.NewValidationError("participantId", "is already the host")
		}
		if err := s.store.SetParticipantHost(ctx, tx, actor.ID, false); err != nil {
			return err
		}
		return s.store.SetParticipantHost(ctx, tx, target.ID, true)
	})
}

// Status returns the session, its members and their advisory sub-cart
// subtotals at list prices, before fees and promotions.
func (s *Service) Status(ctx context.Context, code string) (*SessionView, error) {
	session, err := s.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	merchant, err := s.store.MerchantByID(ctx, session.MerchantID)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.Participants(ctx, s.store.Pool(), session.ID)
	if err != nil {
		return nil, err
	}
	session.Participants = participants

	summaries, err := s.summarizeCarts(ctx, session, participants)
	if err != nil {
		return nil, err
	}

	return &SessionView{Session: session, Merchant: merchant, Participants: summaries}, nil
}

// Submit merges every sub-cart in join order and assembles the result as a
// single order. Host only; the session is stamped SUBMITTED in the same
// transaction.
func (s *Service) Submit(ctx context.Context, code, deviceID string) (*SubmitResult, error) {
	if deviceID == "" {
		return nil, models.NewValidationError("deviceId", "is required")
	}
	session, err := s.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	merchant, err := s.store.MerchantByID(ctx, session.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil || !merchant.IsActive {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "merchant not found")
	}

	var participants []models.GroupParticipant
	var lineOwners []int

	result, err := s.engine.Run(ctx, func(ctx context.Context, tx pgx.Tx) (*order.Submission, error) {
		locked, err := s.store.SessionForUpdate(ctx, tx, session.ID)
		if err != nil {
			return nil, err
		}
		if locked == nil {
			return nil, models.NewOrderError(models.ErrCodeNotFound, "group session not found")
		}
		if locked.Status != models.GroupSessionOpen && locked.Status != models.GroupSessionLocked {
			return nil, models.NewOrderError(models.ErrCodeSessionNotOpen, "session was already submitted")
		}
		if locked.Expired(s.now()) {
			return nil, models.NewOrderError(models.ErrCodeSessionNotOpen, "session has expired")
		}

		actor, err := s.requireHost(ctx, tx, locked.ID, deviceID)
		if err != nil {
			return nil, err
		}

		participants, err = s.store.Participants(ctx, tx, locked.ID)
		if err != nil {
			return nil, err
		}

		cart, owners, err := mergeCarts(locked, participants)
		if err != nil {
			return nil, err
		}
		lineOwners = owners

		return &order.Submission{
			Merchant:      merchant,
			Cart:          cart,
			Origin:        models.OriginGroup,
			Status:        models.StatusPending,
			PaymentMethod: models.PaymentOnline,
			CustomerID:    actor.CustomerID,
			Participants:  len(participants),
			PostPersist: func(ctx context.Context, tx pgx.Tx, o *models.Order) error {
				return s.store.MarkSubmitted(ctx, tx, locked.ID, o.ID)
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	contributions := make([]Contribution, len(participants))
	for i, p := range participants {
		contributions[i] = Contribution{ParticipantID: p.ID, Name: p.Name, Subtotal: decimal.Zero}
	}
	for li, item := range result.Order.Items {
		owner := lineOwners[li]
		contributions[owner].Subtotal = contributions[owner].Subtotal.Add(item.Subtotal)
	}

	s.logger.Info("group_order_submitted", "Group order submitted", "", map[string]interface{}{
		"session_code": code,
		"order_number": result.Order.OrderNumber,
		"participants": len(participants),
	})

	return &SubmitResult{Order: result, Split: ComputeBillSplit(result.Order, contributions)}, nil
}

func (s *Service) lookupMerchant(ctx context.Context, code string) (*models.Merchant, error) {
	if code == "" {
		return nil, models.NewValidationError("merchantCode", "is required")
	}
	merchant, err := s.store.MerchantByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if merchant == nil || !merchant.IsActive {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "merchant not found")
	}
	return merchant, nil
}

func (s *Service) activeSession(ctx context.Context, code string) (*models.GroupOrderSession, error) {
	if code == "" {
		return nil, models.NewValidationError("code", "is required")
	}
	session, err := s.store.ActiveSessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "group session not found")
	}
	return session, nil
}

// requireOpen relocks the session and checks it still accepts mutations.
func (s *Service) requireOpen(ctx context.Context, tx pgx.Tx, sessionID int64) (*models.GroupOrderSession, error) {
	locked, err := s.store.SessionForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "group session not found")
	}
	if locked.Status != models.GroupSessionOpen {
		return nil, models.NewOrderError(models.ErrCodeSessionNotOpen, "session is not accepting changes")
	}
	if locked.Expired(s.now()) {
		return nil, models.NewOrderError(models.ErrCodeSessionNotOpen, "session has expired")
	}
	return locked, nil
}

func (s *Service) requireHost(ctx context.Context, tx pgx.Tx, sessionID int64, deviceID string) (*models.GroupParticipant, error) {
	actor, err := s.store.ParticipantByDevice(ctx, tx, sessionID, deviceID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, models.NewOrderError(models.ErrCodeNotFound, "participant not found")
	}
	if !actor.IsHost {
		return nil, models.NewOrderError(models.ErrCodeForbidden, "only the host can do that")
	}
	return actor, nil
}

func (s *Service) allocateCode(ctx context.Context, tx pgx.Tx) (string, error) {
	for i := 0; i < sessionCodeAttempts; i++ {
		code, err := s.randText(4)
		if err != nil {
			return "", fmt.Errorf("generate session code: %w", err)
		}
		inUse, err := s.store.SessionCodeInUse(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", fmt.Errorf("allocate session code: no free code after %d attempts", sessionCodeAttempts)
}

// summarizeCarts prices every member's sub-cart at list prices. Lines whose
// items have disappeared from the catalog are priced at zero rather than
// failing the whole status call.
func (s *Service) summarizeCarts(ctx context.Context, session *models.GroupOrderSession, participants []models.GroupParticipant) ([]ParticipantSummary, error) {
	var menuIDs, addonIDs []int64
	carts := make([][]models.CartItem, len(participants))
	for i := range participants {
		items, err := participants[i].CartItems()
		if err != nil {
			return nil, fmt.Errorf("participant %d cart: %w", participants[i].ID, err)
		}
		carts[i] = items
		for _, item := range items {
			menuIDs = append(menuIDs, item.MenuID)
			for _, addon := range item.Addons {
				addonIDs = append(addonIDs, addon.AddonItemID)
			}
		}
	}

	menus, err := s.store.MenusByID(ctx, session.MerchantID, menuIDs)
	if err != nil {
		return nil, err
	}
	addons, err := s.store.AddonsByID(ctx, session.MerchantID, addonIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]ParticipantSummary, len(participants))
	for i := range participants {
		subtotal := decimal.Zero
		count := 0
		for _, item := range carts[i] {
			count += item.Quantity
			if menu, ok := menus[item.MenuID]; ok {
				subtotal = subtotal.Add(pricing.Round2(menu.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))))
			}
			for _, addon := range item.Addons {
				if row, ok := addons[addon.AddonItemID]; ok {
					subtotal = subtotal.Add(pricing.Round2(row.Price.Mul(decimal.NewFromInt(int64(addon.Quantity)))))
				}
			}
		}
		summaries[i] = summarize(&participants[i], subtotal, count)
	}
	return summaries, nil
}

func summarize(p *models.GroupParticipant, subtotal decimal.Decimal, itemCount int) ParticipantSummary {
	return ParticipantSummary{
		ID:        p.ID,
		Name:      p.Name,
		IsHost:    p.IsHost,
		JoinedAt:  p.JoinedAt,
		ItemCount: itemCount,
		Subtotal:  subtotal,
	}
}

// mergeCarts flattens every sub-cart into one cart in join order, tagging
// each line's notes with its owner's name. owners maps each merged line back
// to the participant index.
func mergeCarts(session *models.GroupOrderSession, participants []models.GroupParticipant) (*models.Cart, []int, error) {
	cart := &models.Cart{OrderType: string(session.OrderType)}
	if session.TableNumber != nil {
		cart.TableNumber = *session.TableNumber
	}

	var owners []int
	for pi := range participants {
		items, err := participants[pi].CartItems()
		if err != nil {
			return nil, nil, fmt.Errorf("participant %d cart: %w", participants[pi].ID, err)
		}
		for _, item := range items {
			line := item
			line.Notes = tagNote(participants[pi].Name, item.Notes)
			cart.Items = append(cart.Items, line)
			owners = append(owners, pi)
		}
	}

	if len(cart.Items) == 0 {
		return nil, nil, models.NewValidationError("items", "no participant has added any items")
	}

	cart.Normalize()
	if err := cart.Validate(); err != nil {
		return nil, nil, err
	}
	return cart, owners, nil
}

func tagNote(name, notes string) string {
	if notes == "" {
		return name
	}
	return name + ": " + notes
}

func participantName(name string, cc *models.CartCustomer) string {
	if name != "" {
		return name
	}
	if cc != nil && cc.Name != "" {
		return cc.Name
	}
	return "Guest"
}

// encodeCart stores an empty cart as an empty JSON array, never null.
func encodeCart(items []models.CartItem) ([]byte, error) {
	if len(items) == 0 {
		return []byte("[]"), nil
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return payload, nil
}

func sessionCodeText(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = sessionCodeCharset[int(b)%len(sessionCodeCharset)]
	}
	return string(out), nil
}
