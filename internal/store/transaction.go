package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const sqlGetTransactionByID = `
SELECT id, amount_cents, currency, status, external_id, created_at, updated_at
FROM transactions
WHERE id = $1
`

// GetTransactionByID retrieves a transaction by ID
func (s *Store) GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (Transaction, error) {
	var transaction Transaction
	err := s.db.GetContext(ctx, &transaction, sqlGetTransactionByID, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get transaction by id", err)
		return Transaction{}, fmt.Errorf("failed to get transaction by id: %w", err)
	}
	return transaction, nil
}

const sqlUpsertTransactionByExternalID = `
INSERT INTO transactions (amount_cents, currency, status, external_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (external_id)
DO UPDATE SET status = EXCLUDED.status, amount_cents = EXCLUDED.amount_cents, updated_at = CURRENT_TIMESTAMP
RETURNING id, amount_cents, currency, status, external_id, created_at, updated_at
`

// UpsertTransactionByExternalID records or updates a transaction keyed by the
// payment provider's id. Webhook deliveries can repeat, so the write is
// idempotent.
func (s *Store) UpsertTransactionByExternalID(ctx context.Context, amountCents int64, currency string, status string, externalID string) (Transaction, error) {
	var transaction Transaction
	err := s.db.GetContext(ctx, &transaction, sqlUpsertTransactionByExternalID, amountCents, currency, status, externalID)
	if err != nil {
		s.logger.Error(ctx, "failed to upsert transaction", err)
		return Transaction{}, fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return transaction, nil
}
