package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const sqlGetActiveAdCampaigns = `
SELECT id, name, status, budget_cents, spent_cents, daily_budget_cents, bid_amount_cents, start_date, end_date, targeting_keywords, created_at, updated_at
FROM ad_campaigns
WHERE status = 'active'
ORDER BY created_at
`

// GetActiveAdCampaigns retrieves all campaigns in active status. Budget and
// date eligibility are evaluated by the caller so the filter logic stays in
// one place.
func (s *Store) GetActiveAdCampaigns(ctx context.Context) ([]AdCampaign, error) {
	var campaigns []AdCampaign
	err := s.db.SelectContext(ctx, &campaigns, sqlGetActiveAdCampaigns)
	if err != nil {
		s.logger.Error(ctx, "failed to get active ad campaigns", err)
		return nil, fmt.Errorf("failed to get active ad campaigns: %w", err)
	}
	return campaigns, nil
}

const sqlGetPrimaryCreative = `
SELECT id, campaign_id, title, body, image_url, target_url, is_primary, created_at
FROM ad_creatives
WHERE campaign_id = $1
ORDER BY is_primary DESC, created_at
LIMIT 1
`

// GetPrimaryCreative retrieves the primary creative for a campaign, falling
// back to the oldest creative when none is flagged primary.
func (s *Store) GetPrimaryCreative(ctx context.Context, campaignID uuid.UUID) (AdCreative, error) {
	var creative AdCreative
	err := s.db.GetContext(ctx, &creative, sqlGetPrimaryCreative, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AdCreative{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get primary creative", err)
		return AdCreative{}, fmt.Errorf("failed to get primary creative: %w", err)
	}
	return creative, nil
}
