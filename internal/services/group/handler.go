package group

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"dineflow/internal/logger"
	"dineflow/internal/models"
	"dineflow/internal/services/order"
)

// Handler handles HTTP requests for the group order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new group order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the group order routes on the shared API router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/public/group-orders", h.CreateSession)
	r.Get("/public/group-orders/{code}", h.GetSession)
	r.Post("/public/group-orders/{code}/join", h.JoinSession)
	r.Put("/public/group-orders/{code}/participants/{participantId}/cart", h.UpdateCart)
	r.Delete("/public/group-orders/{code}/participants/{participantId}", h.KickParticipant)
	r.Post("/public/group-orders/{code}/leave", h.LeaveSession)
	r.Post("/public/group-orders/{code}/transfer-host", h.TransferHost)
	r.Post("/public/group-orders/{code}/submit", h.SubmitSession)
}

type participantPayload struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	IsHost    bool    `json:"isHost"`
	JoinedAt  string  `json:"joinedAt"`
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
}

type sessionPayload struct {
	SessionCode     string               `json:"sessionCode"`
	MerchantCode    string               `json:"merchantCode,omitempty"`
	OrderType       string               `json:"orderType"`
	TableNumber     *string              `json:"tableNumber,omitempty"`
	Status          string               `json:"status"`
	MaxParticipants int                  `json:"maxParticipants"`
	ExpiresAt       string               `json:"expiresAt"`
	Participants    []participantPayload `json:"participants"`
}

func buildSessionPayload(view *SessionView) *sessionPayload {
	payload := &sessionPayload{
		SessionCode:     view.Session.SessionCode,
		OrderType:       string(view.Session.OrderType),
		TableNumber:     view.Session.TableNumber,
		Status:          string(view.Session.Status),
		MaxParticipants: view.Session.MaxParticipants,
		ExpiresAt:       view.Session.ExpiresAt.Format(time.RFC3339),
	}
	if view.Merchant != nil {
		payload.MerchantCode = view.Merchant.Code
	}
	for _, p := range view.Participants {
		payload.Participants = append(payload.Participants, participantPayload{
			ID:        strconv.FormatInt(p.ID, 10),
			Name:      p.Name,
			IsHost:    p.IsHost,
			JoinedAt:  p.JoinedAt.Format(time.RFC3339),
			ItemCount: p.ItemCount,
			Subtotal:  p.Subtotal.InexactFloat64(),
		})
	}
	return payload
}

// CreateSession handles POST /public/group-orders requests
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	var req CreateSessionRequest
	if err := order.DecodeJSON(r, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	view, err := h.service.Create(ctx, &req)
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusCreated, buildSessionPayload(view))
}

// GetSession handles GET /public/group-orders/{code} requests
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	view, err := h.service.Status(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusOK, buildSessionPayload(view))
}

// JoinSession handles POST /public/group-orders/{code}/join requests
func (h *Handler) JoinSession(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	var req JoinRequest
	if err := order.DecodeJSON(r, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	participant, err := h.service.Join(ctx, chi.URLParam(r, "code"), &req)
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusOK, struct {
		ParticipantID string `json:"participantId"`
		Name          string `json:"name"`
		IsHost        bool   `json:"isHost"`
	}{
		ParticipantID: strconv.FormatInt(participant.ID, 10),
		Name:          participant.Name,
		IsHost:        participant.IsHost,
	})
}

// UpdateCart handles PUT /public/group-orders/{code}/participants/{participantId}/cart requests
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	participantID, err := participantIDParam(r)
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	var req UpdateCartRequest
	if err := order.DecodeJSON(r, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.service.UpdateCart(ctx, chi.URLParam(r, "code"), participantID, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusOK, struct {
		ParticipantID string `json:"participantId"`
		Items         int    `json:"items"`
	}{
		ParticipantID: strconv.FormatInt(participantID, 10),
		Items:         len(req.Items),
	})
}

// KickParticipant handles DELETE /public/group-orders/{code}/participants/{participantId} requests
func (h *Handler) KickParticipant(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	participantID, err := participantIDParam(r)
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	var req MemberRequest
	if err := order.DecodeJSON(r, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.service.Kick(ctx, chi.URLParam(r, "code"), participantID, req.DeviceID); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusOK, struct {
		Removed string `json:"removed"`
	}{Removed: strconv.FormatInt(participantID, 10)})
}

// LeaveSession handles POST /public/group-orders/{code}/leave requests
func (h *Handler) LeaveSession(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	var req MemberRequest
	if err := order.DecodeJSON(r, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.service.Leave(ctx, chi.URLParam(r, "code"), req.DeviceID); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusOK, struct {
		Left bool `json:"left"`
	}{Left: true})
}

type transferRequest struct {
	DeviceID      string `json:"deviceId"`
	ParticipantID int64  `json:"participantId"`
}

// TransferHost handles POST /public/group-orders/{code}/transfer-host requests
func (h *Handler) TransferHost(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	var req transferRequest
	if err := order.DecodeJSON(r, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.service.TransferHost(ctx, chi.URLParam(r, "code"), req.ParticipantID, req.DeviceID); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusOK, struct {
		HostParticipantID string `json:"hostParticipantId"`
	}{HostParticipantID: strconv.FormatInt(req.ParticipantID, 10)})
}

type sharePayload struct {
	ParticipantID  string  `json:"participantId"`
	Name           string  `json:"name"`
	Subtotal       float64 `json:"subtotal"`
	TaxShare       float64 `json:"taxShare"`
	ServiceShare   float64 `json:"serviceShare"`
	PackagingShare float64 `json:"packagingShare"`
	DeliveryShare  float64 `json:"deliveryShare"`
	TotalShare     float64 `json:"totalShare"`
}

// SubmitSession handles POST /public/group-orders/{code}/submit requests
func (h *Handler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	var req MemberRequest
	if err := order.DecodeJSON(r, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.Submit(ctx, chi.URLParam(r, "code"), req.DeviceID)
	if err != nil {
		h.logger.Debug("group_submit_rejected", "Group order was not submitted", requestID, map[string]interface{}{
			"session_code": chi.URLParam(r, "code"),
			"reason":       err.Error(),
		})
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	shares := make([]sharePayload, 0, len(result.Split.Shares))
	for _, share := range result.Split.Shares {
		shares = append(shares, sharePayload{
			ParticipantID:  strconv.FormatInt(share.ParticipantID, 10),
			Name:           share.Name,
			Subtotal:       share.Subtotal.InexactFloat64(),
			TaxShare:       share.TaxShare.InexactFloat64(),
			ServiceShare:   share.ServiceShare.InexactFloat64(),
			PackagingShare: share.PackagingShare.InexactFloat64(),
			DeliveryShare:  share.DeliveryShare.InexactFloat64(),
			TotalShare:     share.TotalShare.InexactFloat64(),
		})
	}

	order.WriteJSON(w, http.StatusCreated, struct {
		Order *order.OrderPayload `json:"order"`
		Split struct {
			OrderTotal float64        `json:"orderTotal"`
			Shares     []sharePayload `json:"shares"`
		} `json:"split"`
	}{
		Order: order.BuildOrderPayload(result.Order.Order),
		Split: struct {
			OrderTotal float64        `json:"orderTotal"`
			Shares     []sharePayload `json:"shares"`
		}{
			OrderTotal: result.Split.OrderTotal.InexactFloat64(),
			Shares:     shares,
		},
	})
}

func participantIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "participantId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("participantId", "must be a numeric participant id")
	}
	return id, nil
}
