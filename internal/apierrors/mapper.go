package apierrors

import (
	"errors"
	"strings"

	affiliateProcessor "ad-server/internal/affiliate/processor"
	fraudProcessor "ad-server/internal/fraud/processor"
	"ad-server/internal/store"
)

// MapError converts domain/processor errors to APIErrors.
// This function centralizes all error mapping logic to ensure consistent
// error responses across the entire API.
//
// If the error is already an APIError, it returns it as-is.
// If the error is a known domain error, it maps it to an appropriate APIError.
// If the error is unknown, it returns a sanitized InternalError (500).
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	// Check if already an APIError
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	// Map affiliate processor errors
	case errors.Is(err, affiliateProcessor.ErrClickNotFound):
		return NotFound(CodeClickNotFound, "Click not found")

	case errors.Is(err, affiliateProcessor.ErrAlreadyConverted):
		return Conflict(CodeAlreadyConverted, "Click has already been converted")

	case errors.Is(err, affiliateProcessor.ErrCampaignNotFound):
		return NotFound(CodeCampaignNotFound, "Affiliate campaign not found")

	case errors.Is(err, affiliateProcessor.ErrCampaignInactive):
		return BadRequest(CodeCampaignInactive, "Affiliate campaign is not active")

	case errors.Is(err, affiliateProcessor.ErrConversionCapReached):
		return BadRequest(CodeCapReached, "Affiliate campaign conversion cap reached")

	case errors.Is(err, affiliateProcessor.ErrTransactionNotFound):
		return NotFound(CodeTransactionNotFound, "Transaction not found")

	case errors.Is(err, affiliateProcessor.ErrTransactionNotCompleted):
		return BadRequest(CodeTransactionNotCompleted, "Transaction has not completed")

	case errors.Is(err, affiliateProcessor.ErrUnknownCommissionType):
		return BadRequest(CodeInvalidCommission, "Unknown commission type")

	case errors.Is(err, affiliateProcessor.ErrInvalidCommission):
		return BadRequest(CodeInvalidCommission, "Computed commission is outside valid bounds")

	// Map fraud processor errors
	case errors.Is(err, fraudProcessor.ErrCampaignNotFound):
		return NotFound(CodeCampaignNotFound, "Affiliate campaign not found")

	case errors.Is(err, fraudProcessor.ErrInvalidLookback):
		return BadRequest(CodeInvalidInput, "Lookback hours must be between 1 and 168")

	// Map store errors
	case errors.Is(err, store.ErrNotFound):
		return NotFound(CodeNotFound, "Resource not found")

	default:
		return mapExternalServiceError(err)
	}
}

// mapExternalServiceError attempts to identify external service errors
// and map them to appropriate service-specific error responses.
func mapExternalServiceError(err error) *APIError {
	errMsg := strings.ToLower(err.Error())

	// Stripe/payment errors
	if strings.Contains(errMsg, "stripe") || strings.Contains(errMsg, "payment") {
		return ServiceUnavailable(
			CodePaymentProviderError,
			"Payment provider is temporarily unavailable. Please try again later.",
			err,
		)
	}

	// Default: Unknown error - return sanitized 500
	return InternalError(err)
}
