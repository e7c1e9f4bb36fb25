package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const sqlGetAffiliateCampaignByID = `
SELECT id, affiliate_id, item_id, commission_type, commission_rate, fixed_commission_cents, max_conversions, total_conversions, is_active, created_at, updated_at
FROM affiliate_campaigns
WHERE id = $1
`

// GetAffiliateCampaignByID retrieves an affiliate campaign by ID
func (s *Store) GetAffiliateCampaignByID(ctx context.Context, campaignID uuid.UUID) (AffiliateCampaign, error) {
	var campaign AffiliateCampaign
	err := s.db.GetContext(ctx, &campaign, sqlGetAffiliateCampaignByID, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AffiliateCampaign{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get affiliate campaign by id", err)
		return AffiliateCampaign{}, fmt.Errorf("failed to get affiliate campaign by id: %w", err)
	}
	return campaign, nil
}

const sqlListActiveAffiliateCampaignIDs = `
SELECT id
FROM affiliate_campaigns
WHERE is_active = TRUE
ORDER BY created_at
`

// ListActiveAffiliateCampaignIDs retrieves the ids of all active affiliate
// campaigns (for the scheduled fraud sweep)
func (s *Store) ListActiveAffiliateCampaignIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, sqlListActiveAffiliateCampaignIDs)
	if err != nil {
		s.logger.Error(ctx, "failed to list active affiliate campaigns", err)
		return nil, fmt.Errorf("failed to list active affiliate campaigns: %w", err)
	}
	return ids, nil
}
