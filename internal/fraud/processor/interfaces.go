package processor

import (
	"ad-server/internal/store"
	"context"
	"time"

	"github.com/google/uuid"
)

// FraudStore defines the database operations required by FraudProcessor
type FraudStore interface {
	GetAffiliateCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.AffiliateCampaign, error)
	GetClicksByCampaignSince(ctx context.Context, campaignID uuid.UUID, since time.Time) ([]store.Click, error)
	CreateFraudAlert(ctx context.Context, params store.CreateFraudAlertParams) (store.FraudAlert, error)
	ListActiveAffiliateCampaignIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SignalDetector inspects a campaign's recent clicks for one class of
// suspicious activity. Detectors are independent: each returns at most one
// evidence item, or nil when its threshold is not met. New heuristics plug in
// here without touching the scorer.
type SignalDetector interface {
	Detect(clicks []store.Click) *Evidence
}
