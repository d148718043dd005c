package tracking

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dineflow/internal/logger"
	"dineflow/internal/models"
	"dineflow/internal/services/order"
)

// Handler handles HTTP requests for the tracking service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new tracking handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the tracking routes on the shared API router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/merchant/orders", h.ListOrders)
	r.Get("/merchant/orders/{orderNumber}", h.GetOrder)
}

// ListOrders handles GET /merchant/orders requests
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	merchantID, err := merchantIDParam(r)
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			order.WriteError(w, h.logger, requestID,
				models.NewValidationError("limit", "must be a number"))
			return
		}
	}

	orders, err := h.service.ListOrders(r.Context(), merchantID, r.URL.Query().Get("status"), limit)
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	payloads := make([]*order.OrderPayload, 0, len(orders))
	for i := range orders {
		payloads = append(payloads, order.BuildOrderPayload(&orders[i]))
	}

	order.WriteJSON(w, http.StatusOK, struct {
		Orders []*order.OrderPayload `json:"orders"`
		Count  int                   `json:"count"`
	}{Orders: payloads, Count: len(payloads)})
}

// GetOrder handles GET /merchant/orders/{orderNumber} requests
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	merchantID, err := merchantIDParam(r)
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	found, err := h.service.GetOrder(r.Context(), merchantID, chi.URLParam(r, "orderNumber"))
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusOK, order.BuildOrderPayload(found))
}

func merchantIDParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("merchantId")
	if raw == "" {
		return 0, models.NewValidationError("merchantId", "is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("merchantId", "must be a positive number")
	}
	return id, nil
}
