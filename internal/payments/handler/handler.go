package handler

import (
	"ad-server/internal/apierrors"
	"ad-server/internal/observability"
	"ad-server/internal/payments/processor"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79/webhook"
)

type Handler struct {
	processor processor.PaymentProcessor
	logger    *observability.Logger
}

func New(processor processor.PaymentProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// HandleWebhook handles POST /api/v1/payments/webhook
func (h *Handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "failed to read request body"))
		return
	}

	signatureHeader := c.GetHeader("Stripe-Signature")
	if signatureHeader == "" {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "missing Stripe-Signature header"))
		return
	}

	event, err := webhook.ConstructEvent(payload, signatureHeader, h.processor.WebhookSecret)
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "invalid webhook signature"))
		return
	}

	if err := h.processor.HandleWebhook(ctx, event); err != nil {
		h.logger.Error(ctx, "failed to handle payment webhook", err)
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "success"})
}
