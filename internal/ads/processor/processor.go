package processor

import (
	"ad-server/internal/config"
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AdProcessor struct {
	store     AdStore
	cache     CampaignCache
	publisher ImpressionPublisher
	config    config.AdsConfig
	logger    *observability.Logger
}

// New creates an AdProcessor. cache and publisher are optional: without a
// cache every serve reads the store, and without a publisher impressions are
// written directly.
func New(adStore AdStore, cache CampaignCache, publisher ImpressionPublisher, cfg config.AdsConfig, logger *observability.Logger) AdProcessor {
	return AdProcessor{
		store:     adStore,
		cache:     cache,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

// ServeRequest represents parameters for selecting an ad
type ServeRequest struct {
	Placement      string
	UserID         *uuid.UUID
	ThreadID       *uuid.UUID
	UserInterests  []string
	ThreadKeywords []string
}

// ServedCreative represents the creative payload of a served ad
type ServedCreative struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ImageURL  *string   `json:"image_url,omitempty"`
	TargetURL string    `json:"target_url"`
}

// ServedAd represents the winning campaign for a placement
type ServedAd struct {
	CampaignID uuid.UUID      `json:"campaign_id"`
	Creative   ServedCreative `json:"creative"`
	Score      float64        `json:"score"`
}

// ServeResponse represents the outcome of an ad-serve decision
type ServeResponse struct {
	Ad     *ServedAd `json:"ad"`
	Reason string    `json:"reason,omitempty"`
}

// ServeAd selects at most one campaign for the placement context. Selection
// is bounded by the configured serve timeout; callers treat any returned
// error as a no-fill rather than a request failure.
func (p *AdProcessor) ServeAd(ctx context.Context, req ServeRequest) (ServeResponse, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "placement", Value: req.Placement})
	ctx, cancel := context.WithTimeout(ctx, p.config.ServeTimeout)
	defer cancel()

	campaigns, err := p.loadActiveCampaigns(ctx)
	if err != nil {
		return ServeResponse{}, fmt.Errorf("failed to load active campaigns: %w", err)
	}

	now := time.Now()
	scored := make([]scoredCampaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		if !isEligible(campaign, now) {
			continue
		}
		scored = append(scored, scoredCampaign{
			campaign: campaign,
			score:    relevanceScore(campaign, req.UserInterests, req.ThreadKeywords, p.config.MaxBidCents),
		})
	}

	winner, reason := selectWinner(scored, p.config.RelevanceThreshold)
	if reason != "" {
		return ServeResponse{Ad: nil, Reason: reason}, nil
	}

	creative, err := p.store.GetPrimaryCreative(ctx, winner.campaign.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.Warn(ctx, "winning campaign has no creative")
			return ServeResponse{Ad: nil, Reason: ReasonNoRelevantAds}, nil
		}
		return ServeResponse{}, fmt.Errorf("failed to load creative: %w", err)
	}

	return ServeResponse{
		Ad: &ServedAd{
			CampaignID: winner.campaign.ID,
			Creative: ServedCreative{
				ID:        creative.ID,
				Title:     creative.Title,
				Body:      creative.Body,
				ImageURL:  creative.ImageURL,
				TargetURL: creative.TargetURL,
			},
			Score: winner.score,
		},
	}, nil
}

// loadActiveCampaigns returns the active-campaign snapshot, preferring the
// cache when one is configured. Cache failures fall through to the store.
func (p *AdProcessor) loadActiveCampaigns(ctx context.Context) ([]store.AdCampaign, error) {
	if p.cache != nil {
		campaigns, found, err := p.cache.GetCampaigns(ctx)
		if err != nil {
			p.logger.Warn(ctx, "campaign cache read failed")
		} else if found {
			return campaigns, nil
		}
	}

	campaigns, err := p.store.GetActiveAdCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.SetCampaigns(ctx, campaigns, p.config.CacheTTL); err != nil {
			p.logger.Warn(ctx, "campaign cache write failed")
		}
	}
	return campaigns, nil
}

// TrackRequest represents parameters for recording an impression
type TrackRequest struct {
	CampaignID uuid.UUID
	CreativeID *uuid.UUID
	UserID     *uuid.UUID
	ThreadID   *uuid.UUID
	Placement  string
	IsViewable bool
}

// TrackImpression records an impression without blocking the caller. When a
// publisher is configured the event goes through the pipeline; otherwise the
// write happens on a detached goroutine. Failures are logged, never surfaced.
func (p *AdProcessor) TrackImpression(ctx context.Context, req TrackRequest) {
	params := store.CreateImpressionParams{
		CampaignID: req.CampaignID,
		CreativeID: req.CreativeID,
		UserID:     req.UserID,
		ThreadID:   req.ThreadID,
		Placement:  req.Placement,
		IsViewable: req.IsViewable,
	}

	if p.publisher != nil {
		if err := p.publisher.PublishImpression(ctx, params); err == nil {
			return
		}
		p.logger.Warn(ctx, "impression publish failed, writing directly")
	}

	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := p.store.CreateImpression(writeCtx, params); err != nil {
			p.logger.Error(writeCtx, "failed to record impression", err)
		}
	}()
}
