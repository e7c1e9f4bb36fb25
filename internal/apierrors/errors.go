package apierrors

import (
	"fmt"
	"net/http"
)

// Machine-readable error codes returned to API clients.
const (
	CodeInvalidInput            = "INVALID_INPUT"
	CodeNotFound                = "NOT_FOUND"
	CodeClickNotFound           = "CLICK_NOT_FOUND"
	CodeTransactionNotFound     = "TRANSACTION_NOT_FOUND"
	CodeCampaignNotFound        = "CAMPAIGN_NOT_FOUND"
	CodeAlreadyConverted        = "ALREADY_CONVERTED"
	CodeCampaignInactive        = "CAMPAIGN_INACTIVE"
	CodeCapReached              = "CAP_REACHED"
	CodeTransactionNotCompleted = "TRANSACTION_NOT_COMPLETED"
	CodeInvalidCommission       = "INVALID_COMMISSION"
	CodePaymentProviderError    = "PAYMENT_PROVIDER_ERROR"
	CodeInternalError           = "INTERNAL_ERROR"
)

// APIError is an error carrying an HTTP status and a client-safe message.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	internal   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped internal error for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.internal
}

// NotFound builds a 404 error.
func NotFound(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Code: code, Message: message}
}

// BadRequest builds a 400 error.
func BadRequest(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: code, Message: message}
}

// Conflict builds a 409 error.
func Conflict(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusConflict, Code: code, Message: message}
}

// ServiceUnavailable builds a 503 error wrapping the internal cause.
func ServiceUnavailable(code, message string, internalErr error) *APIError {
	return &APIError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       code,
		Message:    message,
		internal:   internalErr,
	}
}

// InternalError builds a sanitized 500 error wrapping the internal cause.
// The internal error is logged, never exposed to the client.
func InternalError(internalErr error) *APIError {
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    "An internal error occurred. Please try again later.",
		internal:   internalErr,
	}
}
