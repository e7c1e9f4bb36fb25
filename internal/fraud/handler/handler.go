package handler

import (
	"ad-server/internal/apierrors"
	"ad-server/internal/fraud/processor"
	"ad-server/internal/observability"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	processor processor.FraudProcessor
	logger    *observability.Logger
}

func New(processor processor.FraudProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// DetectFraudRequest represents the HTTP request for a fraud detection run
type DetectFraudRequest struct {
	CampaignID    uuid.UUID `json:"campaign_id" binding:"required"`
	LookbackHours int       `json:"lookback_hours" binding:"omitempty,gte=1,lte=168"`
}

// HandleDetectFraud handles POST /api/v1/affiliate/fraud. Unlike ad serving
// this is an explicitly invoked diagnostic, so failures surface as errors
// instead of degrading.
func (h *Handler) HandleDetectFraud(c *gin.Context) {
	ctx := c.Request.Context()

	var req DetectFraudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	report, err := h.processor.DetectFraud(ctx, req.CampaignID, req.LookbackHours)
	if err != nil {
		h.logger.Error(ctx, "fraud detection failed", err)
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
