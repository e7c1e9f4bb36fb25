package handler

import (
	"ad-server/internal/affiliate/processor"
	"ad-server/internal/apierrors"
	"ad-server/internal/observability"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	processor processor.AffiliateProcessor
	logger    *observability.Logger
}

func New(processor processor.AffiliateProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// AttributeConversionRequest represents the HTTP request for attributing a
// conversion to a click
type AttributeConversionRequest struct {
	ClickID       uuid.UUID `json:"click_id" binding:"required"`
	TransactionID uuid.UUID `json:"transaction_id" binding:"required"`
}

// HandleAttributeConversion handles POST /api/v1/affiliate/commissions.
// A click that is already converted responds 409 but carries the existing
// conversion, so retries are idempotent from the caller's perspective.
func (h *Handler) HandleAttributeConversion(c *gin.Context) {
	ctx := c.Request.Context()

	var req AttributeConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	result, err := h.processor.AttributeConversion(ctx, req.ClickID, req.TransactionID)
	if err != nil {
		if errors.Is(err, processor.ErrAlreadyConverted) {
			c.JSON(http.StatusConflict, result)
			return
		}
		h.logger.Error(ctx, "failed to attribute conversion", err)
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
