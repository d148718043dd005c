package reservation

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

// Handler handles HTTP requests for the reservation service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new reservation handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the reservation routes on the shared API router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/merchant/reservations/{id}/accept", h.AcceptReservation)
	r.Post("/merchant/reservations/{id}/reject", h.RejectReservation)
}

type reservationRequest struct {
	MerchantID int64 `json:"merchantId"`
}

// AcceptReservation handles POST /merchant/reservations/{id}/accept requests
func (h *Handler) AcceptReservation(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	reservationID, err := reservationIDParam(r)
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	var req reservationRequest
	if err := order.DecodeJSON(r, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.Accept(ctx, req.MerchantID, reservationID)
	if err != nil {
		h.logger.Debug("reservation_accept_rejected", "Reservation was not accepted", requestID, map[string]interface{}{
			"reservation_id": reservationID,
			"reason":         err.Error(),
		})
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusCreated, struct {
		ReservationID string              `json:"reservationId"`
		Status        string              `json:"status"`
		Order         *order.OrderPayload `json:"order"`
	}{
		ReservationID: strconv.FormatInt(reservationID, 10),
		Status:        string(models.ReservationAccepted),
		Order:         order.BuildOrderPayload(result.Order),
	})
}

// RejectReservation handles POST /merchant/reservations/{id}/reject requests
func (h *Handler) RejectReservation(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	reservationID, err := reservationIDParam(r)
	if err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	var req reservationRequest
	if err := order.DecodeJSON(r, &req); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.service.Reject(ctx, req.MerchantID, reservationID); err != nil {
		order.WriteError(w, h.logger, requestID, err)
		return
	}

	order.WriteJSON(w, http.StatusOK, struct {
		ReservationID string `json:"reservationId"`
		Status        string `json:"status"`
	}{
		ReservationID: strconv.FormatInt(reservationID, 10),
		Status:        string(models.ReservationRejected),
	})
}

func reservationIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("id", "must be a numeric reservation id")
	}
	return id, nil
}
