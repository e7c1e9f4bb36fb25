package processor

import (
	"ad-server/internal/store"
	"context"
	"time"

	"github.com/google/uuid"
)

// AdStore defines the database operations required by AdProcessor
type AdStore interface {
	GetActiveAdCampaigns(ctx context.Context) ([]store.AdCampaign, error)
	GetPrimaryCreative(ctx context.Context, campaignID uuid.UUID) (store.AdCreative, error)
	CreateImpression(ctx context.Context, params store.CreateImpressionParams) (store.Impression, error)
}

// CampaignCache caches the active-campaign snapshot between serve requests
type CampaignCache interface {
	GetCampaigns(ctx context.Context) ([]store.AdCampaign, bool, error)
	SetCampaigns(ctx context.Context, campaigns []store.AdCampaign, ttl time.Duration) error
}

// ImpressionPublisher publishes impression events for asynchronous recording
type ImpressionPublisher interface {
	PublishImpression(ctx context.Context, params store.CreateImpressionParams) error
}
