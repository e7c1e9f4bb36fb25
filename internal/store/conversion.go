package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// CreateConversionParams represents parameters for attributing a conversion
type CreateConversionParams struct {
	ClickID               uuid.UUID
	CampaignID            uuid.UUID
	TransactionID         uuid.UUID
	CommissionAmountCents int64
	CommissionRate        float64
	Currency              string
}

const sqlInsertConversion = `
INSERT INTO affiliate_conversions (click_id, campaign_id, transaction_id, commission_amount_cents, commission_rate, currency, payout_status)
VALUES ($1, $2, $3, $4, $5, $6, 'pending')
RETURNING id, click_id, campaign_id, transaction_id, commission_amount_cents, commission_rate, currency, payout_status, created_at
`

const sqlClaimClick = `
UPDATE affiliate_clicks
SET converted = TRUE, conversion_id = $2
WHERE id = $1 AND converted = FALSE
`

const sqlIncrementTotalConversions = `
UPDATE affiliate_campaigns
SET total_conversions = total_conversions + 1, updated_at = CURRENT_TIMESTAMP
WHERE id = $1
`

// pgUniqueViolation is the Postgres error code for a unique constraint hit.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// CreateConversionForClick persists a conversion and claims its click in a
// single transaction. A lost race surfaces as ErrClickAlreadyConverted on
// either of two paths: a concurrent attribution that committed first makes
// the INSERT hit the UNIQUE constraint on affiliate_conversions.click_id,
// and a stale unconverted read makes the conditional claim UPDATE touch zero
// rows. Both roll back so the caller can return the existing conversion.
func (s *Store) CreateConversionForClick(ctx context.Context, params CreateConversionParams) (Conversion, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error(ctx, "failed to begin conversion transaction", err)
		return Conversion{}, fmt.Errorf("failed to begin conversion transaction: %w", err)
	}
	defer tx.Rollback()

	var conversion Conversion
	err = tx.GetContext(ctx, &conversion, sqlInsertConversion,
		params.ClickID,
		params.CampaignID,
		params.TransactionID,
		params.CommissionAmountCents,
		params.CommissionRate,
		params.Currency)
	if err != nil {
		if isUniqueViolation(err) {
			return Conversion{}, ErrClickAlreadyConverted
		}
		s.logger.Error(ctx, "failed to insert conversion", err)
		return Conversion{}, fmt.Errorf("failed to insert conversion: %w", err)
	}

	res, err := tx.ExecContext(ctx, sqlClaimClick, params.ClickID, conversion.ID)
	if err != nil {
		s.logger.Error(ctx, "failed to claim click", err)
		return Conversion{}, fmt.Errorf("failed to claim click: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		s.logger.Error(ctx, "failed to get rows affected", err)
		return Conversion{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return Conversion{}, ErrClickAlreadyConverted
	}

	if _, err := tx.ExecContext(ctx, sqlIncrementTotalConversions, params.CampaignID); err != nil {
		s.logger.Error(ctx, "failed to increment total conversions", err)
		return Conversion{}, fmt.Errorf("failed to increment total conversions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error(ctx, "failed to commit conversion transaction", err)
		return Conversion{}, fmt.Errorf("failed to commit conversion transaction: %w", err)
	}
	return conversion, nil
}

const sqlGetConversionByClickID = `
SELECT id, click_id, campaign_id, transaction_id, commission_amount_cents, commission_rate, currency, payout_status, created_at
FROM affiliate_conversions
WHERE click_id = $1
`

// GetConversionByClickID retrieves the conversion attributed to a click
func (s *Store) GetConversionByClickID(ctx context.Context, clickID uuid.UUID) (Conversion, error) {
	var conversion Conversion
	err := s.db.GetContext(ctx, &conversion, sqlGetConversionByClickID, clickID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversion{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get conversion by click id", err)
		return Conversion{}, fmt.Errorf("failed to get conversion by click id: %w", err)
	}
	return conversion, nil
}
