package handler

import (
	"ad-server/internal/ads/processor"
	"ad-server/internal/apierrors"
	"ad-server/internal/observability"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	processor processor.AdProcessor
	logger    *observability.Logger
}

func New(processor processor.AdProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// ServeAdRequest represents the HTTP request for serving an ad
type ServeAdRequest struct {
	Placement      string     `json:"placement" binding:"required,oneof=feed sidebar thread marketplace"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	ThreadID       *uuid.UUID `json:"thread_id,omitempty"`
	UserInterests  []string   `json:"user_interests,omitempty"`
	ThreadKeywords []string   `json:"thread_keywords,omitempty"`
}

// HandleServeAd handles POST /api/v1/ads/serve. Ad selection is best-effort:
// internal failures respond 200 with a null ad rather than a 5xx, since an
// empty slot is preferable to failing the caller's page.
func (h *Handler) HandleServeAd(c *gin.Context) {
	ctx := c.Request.Context()

	var req ServeAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	response, err := h.processor.ServeAd(ctx, processor.ServeRequest{
		Placement:      req.Placement,
		UserID:         req.UserID,
		ThreadID:       req.ThreadID,
		UserInterests:  req.UserInterests,
		ThreadKeywords: req.ThreadKeywords,
	})
	if err != nil {
		h.logger.Error(ctx, "ad selection failed", err)
		c.JSON(http.StatusOK, processor.ServeResponse{Ad: nil, Reason: processor.ReasonError})
		return
	}

	c.JSON(http.StatusOK, response)
}

// TrackImpressionRequest represents the HTTP request for recording an
// impression
type TrackImpressionRequest struct {
	CampaignID uuid.UUID  `json:"campaign_id" binding:"required"`
	CreativeID *uuid.UUID `json:"creative_id,omitempty"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	ThreadID   *uuid.UUID `json:"thread_id,omitempty"`
	Placement  string     `json:"placement" binding:"required,oneof=feed sidebar thread marketplace"`
	IsViewable bool       `json:"is_viewable"`
}

// HandleTrackImpression handles POST /api/v1/ads/track. The write is
// fire-and-forget, so the response does not depend on its outcome.
func (h *Handler) HandleTrackImpression(c *gin.Context) {
	ctx := c.Request.Context()

	var req TrackImpressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	h.processor.TrackImpression(ctx, processor.TrackRequest{
		CampaignID: req.CampaignID,
		CreativeID: req.CreativeID,
		UserID:     req.UserID,
		ThreadID:   req.ThreadID,
		Placement:  req.Placement,
		IsViewable: req.IsViewable,
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}
