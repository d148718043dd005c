package order

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dineflow/internal/logger"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the order routes on the shared API router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/pos/orders", h.CreatePOSOrder)
	r.Post("/public/orders", h.CreatePublicOrder)
	r.Get("/public/merchants/{code}/status", h.GetMerchantStatus)
	r.Get("/public/merchants/{code}/wait-estimate", h.GetWaitEstimate)
}

// CreatePOSOrder handles POST /pos/orders requests
func (h *Handler) CreatePOSOrder(w http.ResponseWriter, r *http.Request) {
	h.createOrder(w, r, "pos", h.service.PlacePOSOrder)
}

// CreatePublicOrder handles POST /public/orders requests
func (h *Handler) CreatePublicOrder(w http.ResponseWriter, r *http.Request) {
	h.createOrder(w, r, "public", h.service.PlacePublicOrder)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request, channel string, place func(context.Context, *OrderRequest) (*Result, error)) {
	requestID := logger.RequestIDFrom(r.Context())

	var req OrderRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := place(ctx, &req)
	if err != nil {
		h.logger.Debug("order_rejected", "Order was not created", requestID, map[string]interface{}{
			"channel": channel,
			"reason":  err.Error(),
		})
		WriteError(w, h.logger, requestID, err)
		return
	}

	h.logger.Info("order_created", "Order created", requestID, map[string]interface{}{
		"channel":      channel,
		"order_number": result.Order.OrderNumber,
		"order_type":   string(result.Order.OrderType),
		"total_amount": result.Order.TotalAmount.InexactFloat64(),
	})

	WriteJSON(w, http.StatusCreated, BuildOrderPayload(result.Order))
}

// GetMerchantStatus handles GET /public/merchants/{code}/status requests
func (h *Handler) GetMerchantStatus(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	report, err := h.service.MerchantStatus(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		WriteError(w, h.logger, requestID, err)
		return
	}

	type modePayload struct {
		Mode      string `json:"mode"`
		Available bool   `json:"available"`
		Reason    string `json:"reason"`
	}
	payload := struct {
		MerchantCode   string        `json:"merchantCode"`
		MerchantName   string        `json:"merchantName"`
		CheckedAt      string        `json:"checkedAt"`
		IsOpen         bool          `json:"isOpen"`
		Reason         string        `json:"reason"`
		ManualOverride bool          `json:"manualOverride"`
		SpecialHour    string        `json:"specialHour,omitempty"`
		Modes          []modePayload `json:"modes"`
	}{
		MerchantCode:   report.Merchant.Code,
		MerchantName:   report.Merchant.Name,
		CheckedAt:      report.CheckedAt.Format(time.RFC3339),
		IsOpen:         report.Store.OK,
		Reason:         report.Store.Reason,
		ManualOverride: report.ManualOverride,
		SpecialHour:    report.SpecialHour,
	}
	for _, mv := range report.Modes {
		payload.Modes = append(payload.Modes, modePayload{
			Mode:      string(mv.Mode),
			Available: mv.Verdict.OK,
			Reason:    mv.Verdict.Reason,
		})
	}

	WriteJSON(w, http.StatusOK, payload)
}

// GetWaitEstimate handles GET /public/merchants/{code}/wait-estimate requests
func (h *Handler) GetWaitEstimate(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	estimate, err := h.service.EstimateWait(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		WriteError(w, h.logger, requestID, err)
		return
	}

	WriteJSON(w, http.StatusOK, struct {
		MerchantCode     string `json:"merchantCode"`
		EstimatedMinutes int    `json:"estimatedMinutes"`
		SampleCount      int    `json:"sampleCount"`
	}{
		MerchantCode:     estimate.Merchant.Code,
		EstimatedMinutes: estimate.Minutes,
		SampleCount:      estimate.SampleCount,
	})
}
