package order

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"dineflow/internal/logger"
	"dineflow/internal/models"
)

// OrderPayload is the serialized order graph. Identifiers go out as strings
// so large ids survive JavaScript clients; money goes out as plain 2-place
// numbers.
type OrderPayload struct {
	ID          string  `json:"id"`
	MerchantID  string  `json:"merchantId"`
	CustomerID  *string `json:"customerId,omitempty"`
	OrderNumber string  `json:"orderNumber"`
	OrderType   string  `json:"orderType"`
	TableNumber *string `json:"tableNumber,omitempty"`
	Status      string  `json:"status"`
	Origin      string  `json:"origin"`

	Subtotal            float64 `json:"subtotal"`
	TaxAmount           float64 `json:"taxAmount"`
	ServiceChargeAmount float64 `json:"serviceChargeAmount"`
	PackagingFeeAmount  float64 `json:"packagingFeeAmount"`
	DeliveryFeeAmount   float64 `json:"deliveryFeeAmount"`
	TotalAmount         float64 `json:"totalAmount"`

	Notes         *string   `json:"notes,omitempty"`
	IsScheduled   bool      `json:"isScheduled"`
	ScheduledDate *string   `json:"scheduledDate,omitempty"`
	ScheduledTime *string   `json:"scheduledTime,omitempty"`
	PlacedAt      time.Time `json:"placedAt"`

	Items   []OrderItemPayload `json:"items"`
	Payment *PaymentPayload    `json:"payment,omitempty"`
}

// OrderItemPayload is one serialized line snapshot.
type OrderItemPayload struct {
	ID        string                  `json:"id"`
	MenuID    string                  `json:"menuId"`
	MenuName  string                  `json:"menuName"`
	MenuPrice float64                 `json:"menuPrice"`
	Quantity  int                     `json:"quantity"`
	Subtotal  float64                 `json:"subtotal"`
	Notes     *string                 `json:"notes,omitempty"`
	Addons    []OrderItemAddonPayload `json:"addons,omitempty"`
}

// OrderItemAddonPayload is one serialized addon snapshot.
type OrderItemAddonPayload struct {
	ID          string  `json:"id"`
	AddonItemID string  `json:"addonItemId"`
	AddonName   string  `json:"addonName"`
	AddonPrice  float64 `json:"addonPrice"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// PaymentPayload is the serialized pending payment.
type PaymentPayload struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Status string  `json:"status"`
}

// BuildOrderPayload serializes a hydrated order for any of the four adapters.
func BuildOrderPayload(o *models.Order) *OrderPayload {
	p := &OrderPayload{
		ID:          formatID(o.ID),
		MerchantID:  formatID(o.MerchantID),
		OrderNumber: o.OrderNumber,
		OrderType:   string(o.OrderType),
		TableNumber: o.TableNumber,
		Status:      string(o.Status),
		Origin:      string(o.Origin),

		Subtotal:            o.Subtotal.InexactFloat64(),
		TaxAmount:           o.TaxAmount.InexactFloat64(),
		ServiceChargeAmount: o.ServiceChargeAmount.InexactFloat64(),
		PackagingFeeAmount:  o.PackagingFeeAmount.InexactFloat64(),
		DeliveryFeeAmount:   o.DeliveryFeeAmount.InexactFloat64(),
		TotalAmount:         o.TotalAmount.InexactFloat64(),

		Notes:         o.Notes,
		IsScheduled:   o.IsScheduled,
		ScheduledDate: o.ScheduledDate,
		ScheduledTime: o.ScheduledTime,
		PlacedAt:      o.PlacedAt,

		Items: make([]OrderItemPayload, 0, len(o.Items)),
	}
	if o.CustomerID != nil {
		id := formatID(*o.CustomerID)
		p.CustomerID = &id
	}

	for _, item := range o.Items {
		ip := OrderItemPayload{
			ID:        formatID(item.ID),
			MenuID:    formatID(item.MenuID),
			MenuName:  item.MenuName,
			MenuPrice: item.MenuPrice.InexactFloat64(),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal.InexactFloat64(),
			Notes:     item.Notes,
		}
		for _, addon := range item.Addons {
			ip.Addons = append(ip.Addons, OrderItemAddonPayload{
				ID:          formatID(addon.ID),
				AddonItemID: formatID(addon.AddonItemID),
				AddonName:   addon.AddonName,
				AddonPrice:  addon.AddonPrice.InexactFloat64(),
				Quantity:    addon.Quantity,
				Subtotal:    addon.Subtotal.InexactFloat64(),
			})
		}
		p.Items = append(p.Items, ip)
	}

	if o.Payment != nil {
		p.Payment = &PaymentPayload{
			ID:     formatID(o.Payment.ID),
			Amount: o.Payment.Amount.InexactFloat64(),
			Method: string(o.Payment.Method),
			Status: string(o.Payment.Status),
		}
	}
	return p
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// DecodeJSON strictly decodes a request body, rejecting unknown fields.
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return models.NewValidationError("", "invalid JSON body")
	}
	return nil
}

// WriteJSON writes a success envelope.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// WriteError maps a rejection onto its HTTP status and writes the error
// envelope. Anything that is not a domain rejection is logged and reported
// as a plain internal error.
func WriteError(w http.ResponseWriter, log *logger.Logger, requestID string, err error) {
	if ve, ok := models.AsValidationError(err); ok {
		writeErrorBody(w, http.StatusBadRequest, models.ErrCodeValidation, ve.Error())
		return
	}
	if oe, ok := models.AsOrderError(err); ok {
		writeErrorBody(w, statusForCode(oe.Code), oe.Code, oe.Message)
		return
	}
	log.Error("request_failed", "Unhandled error", requestID, err, nil)
	writeErrorBody(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal server error")
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func statusForCode(code string) int {
	switch code {
	case models.ErrCodeNotFound, models.ErrCodeItemNotFound:
		return http.StatusNotFound
	case models.ErrCodeForbidden:
		return http.StatusForbidden
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeValidation:
		return http.StatusBadRequest
	case models.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		// the remaining codes are all state conflicts with the live catalog,
		// schedule or session
		return http.StatusConflict
	}
}
