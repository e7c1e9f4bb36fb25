package processor

import (
	"ad-server/internal/store"
	"sort"
)

const (
	ReasonNoEligibleCampaigns = "no_eligible_campaigns"
	ReasonNoRelevantAds       = "no_relevant_ads"
	ReasonError               = "error"
)

type scoredCampaign struct {
	campaign store.AdCampaign
	score    float64
}

// selectWinner ranks scored campaigns and picks the winner. Ties on score
// break on higher bid, then ascending campaign id, so identical input always
// yields an identical result regardless of input order.
func selectWinner(scored []scoredCampaign, threshold float64) (scoredCampaign, string) {
	if len(scored) == 0 {
		return scoredCampaign{}, ReasonNoEligibleCampaigns
	}

	relevant := make([]scoredCampaign, 0, len(scored))
	for _, sc := range scored {
		if sc.score >= threshold {
			relevant = append(relevant, sc)
		}
	}
	if len(relevant) == 0 {
		return scoredCampaign{}, ReasonNoRelevantAds
	}

	sort.Slice(relevant, func(i, j int) bool {
		if relevant[i].score != relevant[j].score {
			return relevant[i].score > relevant[j].score
		}
		if relevant[i].campaign.BidAmountCents != relevant[j].campaign.BidAmountCents {
			return relevant[i].campaign.BidAmountCents > relevant[j].campaign.BidAmountCents
		}
		return relevant[i].campaign.ID.String() < relevant[j].campaign.ID.String()
	})
	return relevant[0], ""
}
