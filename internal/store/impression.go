package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateImpressionParams represents parameters for recording an ad impression
type CreateImpressionParams struct {
	CampaignID uuid.UUID
	CreativeID *uuid.UUID
	UserID     *uuid.UUID
	ThreadID   *uuid.UUID
	Placement  string
	IsViewable bool
}

const sqlCreateImpression = `
INSERT INTO ad_impressions (campaign_id, creative_id, user_id, thread_id, placement, is_viewable)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, campaign_id, creative_id, user_id, thread_id, placement, is_viewable, created_at
`

// CreateImpression records an ad impression
func (s *Store) CreateImpression(ctx context.Context, params CreateImpressionParams) (Impression, error) {
	var impression Impression
	err := s.db.GetContext(ctx, &impression, sqlCreateImpression,
		params.CampaignID,
		params.CreativeID,
		params.UserID,
		params.ThreadID,
		params.Placement,
		params.IsViewable)
	if err != nil {
		s.logger.Error(ctx, "failed to create impression", err)
		return Impression{}, fmt.Errorf("failed to create impression: %w", err)
	}
	return impression, nil
}
