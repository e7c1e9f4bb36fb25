package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sqlGetClickByID = `
SELECT id, campaign_id, affiliate_id, ip_address, user_agent, converted, conversion_id, created_at
FROM affiliate_clicks
WHERE id = $1
`

// GetClickByID retrieves a click by ID
func (s *Store) GetClickByID(ctx context.Context, clickID uuid.UUID) (Click, error) {
	var click Click
	err := s.db.GetContext(ctx, &click, sqlGetClickByID, clickID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Click{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get click by id", err)
		return Click{}, fmt.Errorf("failed to get click by id: %w", err)
	}
	return click, nil
}

const sqlGetClicksByCampaignSince = `
SELECT id, campaign_id, affiliate_id, ip_address, user_agent, converted, conversion_id, created_at
FROM affiliate_clicks
WHERE campaign_id = $1 AND created_at >= $2
ORDER BY created_at
`

// GetClicksByCampaignSince retrieves all clicks for a campaign within the
// lookback window (for fraud detection)
func (s *Store) GetClicksByCampaignSince(ctx context.Context, campaignID uuid.UUID, since time.Time) ([]Click, error) {
	var clicks []Click
	err := s.db.SelectContext(ctx, &clicks, sqlGetClicksByCampaignSince, campaignID, since)
	if err != nil {
		s.logger.Error(ctx, "failed to get clicks by campaign", err)
		return nil, fmt.Errorf("failed to get clicks by campaign: %w", err)
	}
	return clicks, nil
}
