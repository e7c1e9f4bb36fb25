package processor

import (
	"ad-server/internal/store"
	"math"
)

// calculateCommission maps campaign terms and a transaction amount to a
// commission in cents. An unrecognized commission type fails fast rather
// than defaulting to zero.
func calculateCommission(campaign store.AffiliateCampaign, amountCents int64) (int64, error) {
	switch campaign.CommissionType {
	case store.CommissionTypePercentage:
		return int64(math.Round(float64(amountCents) * campaign.CommissionRate / 100)), nil
	case store.CommissionTypeFixed:
		return campaign.FixedCommissionCents, nil
	default:
		return 0, ErrUnknownCommissionType
	}
}
