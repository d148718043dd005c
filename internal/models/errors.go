package models

import (
	"errors"
	"fmt"
)

// Rejection codes surfaced to clients. Every code maps to a 4xx response;
// anything not covered here is reported as ErrCodeInternal.
const (
	ErrCodeItemNotFound          = "ITEM_NOT_FOUND"
	ErrCodeItemUnavailable       = "ITEM_UNAVAILABLE"
	ErrCodeInsufficientStock     = "INSUFFICIENT_STOCK"
	ErrCodeInvalidOrderType      = "INVALID_ORDER_TYPE"
	ErrCodeStoreClosed           = "STORE_CLOSED"
	ErrCodeModeUnavailable       = "MODE_UNAVAILABLE"
	ErrCodeReservationNotPending = "RESERVATION_NOT_PENDING"
	ErrCodeReservationTimePast   = "RESERVATION_TIME_PAST"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeRateLimited           = "RATE_LIMITED"
	ErrCodeSessionNotOpen        = "SESSION_NOT_OPEN"
	ErrCodeInternal              = "INTERNAL_ERROR"
)

// OrderError is a user-presentable rejection. Returning one from any step of
// an assembly run aborts the surrounding transaction; the handler serializes
// the code and message as-is, so messages must never carry internal detail.
type OrderError struct {
	Code    string
	Message string
}

func (e *OrderError) Error() string {
	return e.Code + ": " + e.Message
}

// NewOrderError creates an OrderError with the given code and message.
func NewOrderError(code, message string) *OrderError {
	return &OrderError{Code: code, Message: message}
}

// ErrItemNotFound reports a cart reference to a missing or deleted item.
func ErrItemNotFound(name string) *OrderError {
	return &OrderError{Code: ErrCodeItemNotFound, Message: fmt.Sprintf("item %q not found", name)}
}

// ErrItemUnavailable reports a cart reference to a deactivated item.
func ErrItemUnavailable(name string) *OrderError {
	return &OrderError{Code: ErrCodeItemUnavailable, Message: fmt.Sprintf("%q is currently unavailable", name)}
}

// ErrInsufficientStock reports that an item's remaining stock cannot cover
// the requested quantity. Raised both by the pre-check and by the conditional
// decrement; callers cannot tell which without re-reading stock.
func ErrInsufficientStock(name string) *OrderError {
	return &OrderError{Code: ErrCodeInsufficientStock, Message: fmt.Sprintf("insufficient stock for %q", name)}
}

// ErrInvalidOrderType reports an unknown or merchant-disabled order type.
func ErrInvalidOrderType(orderType string) *OrderError {
	return &OrderError{Code: ErrCodeInvalidOrderType, Message: fmt.Sprintf("order type %q is not available for this merchant", orderType)}
}

// ErrStoreClosed reports an availability-gate rejection of the store itself.
func ErrStoreClosed(reason string) *OrderError {
	return &OrderError{Code: ErrCodeStoreClosed, Message: "store is closed: " + reason}
}

// ErrModeUnavailable reports an availability-gate rejection of a fulfillment mode.
func ErrModeUnavailable(mode, reason string) *OrderError {
	return &OrderError{Code: ErrCodeModeUnavailable, Message: fmt.Sprintf("%s is not available: %s", mode, reason)}
}

// AsOrderError unwraps err into an *OrderError if one is in its chain.
func AsOrderError(err error) (*OrderError, bool) {
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// ValidationError is a boundary-level schema failure: a request that never
// reaches the assembly pipeline because its shape is wrong.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidationError unwraps err into a *ValidationError if one is in its chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
