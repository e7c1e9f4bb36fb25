package processor

import (
	"ad-server/internal/store"
	"time"
)

// isEligible reports whether a campaign may be considered for serving at the
// given instant. A malformed campaign is simply ineligible, never an error.
func isEligible(campaign store.AdCampaign, now time.Time) bool {
	if campaign.Status != store.AdCampaignStatusActive {
		return false
	}
	if campaign.SpentCents >= campaign.DailyBudgetCents {
		return false
	}
	if campaign.StartDate.After(now) {
		return false
	}
	if campaign.EndDate != nil && campaign.EndDate.Before(now) {
		return false
	}
	return true
}
