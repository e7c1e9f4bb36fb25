package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateFraudAlertParams represents parameters for persisting a fraud alert
type CreateFraudAlertParams struct {
	CampaignID uuid.UUID
	FraudScore float64
	Severity   string
	Reasons    StringArray
}

const sqlCreateFraudAlert = `
INSERT INTO fraud_alerts (campaign_id, fraud_score, severity, reasons, status)
VALUES ($1, $2, $3, $4, 'pending_review')
RETURNING id, campaign_id, fraud_score, severity, reasons, status, created_at
`

// CreateFraudAlert persists a fraud alert for review
func (s *Store) CreateFraudAlert(ctx context.Context, params CreateFraudAlertParams) (FraudAlert, error) {
	var alert FraudAlert
	err := s.db.GetContext(ctx, &alert, sqlCreateFraudAlert,
		params.CampaignID,
		params.FraudScore,
		params.Severity,
		params.Reasons)
	if err != nil {
		s.logger.Error(ctx, "failed to create fraud alert", err)
		return FraudAlert{}, fmt.Errorf("failed to create fraud alert: %w", err)
	}
	return alert, nil
}
