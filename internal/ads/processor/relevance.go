package processor

import (
	"ad-server/internal/store"
	"strings"
)

const (
	interestWeight = 0.4
	keywordWeight  = 0.4
	bidWeight      = 0.2
)

// relevanceScore rates a campaign against the placement context. The result
// is always in [0, 1]: two overlap terms worth 0.4 each and a bid term worth
// 0.2. An empty interest or keyword set contributes 0 rather than dividing
// by zero.
func relevanceScore(campaign store.AdCampaign, userInterests, threadKeywords []string, maxBidCents int64) float64 {
	score := 0.0
	if len(userInterests) > 0 {
		score += interestWeight * overlapRatio(userInterests, campaign.TargetingKeywords)
	}
	if len(threadKeywords) > 0 {
		score += keywordWeight * overlapRatio(threadKeywords, campaign.TargetingKeywords)
	}
	if maxBidCents > 0 {
		bidRatio := float64(campaign.BidAmountCents) / float64(maxBidCents)
		if bidRatio > 1 {
			bidRatio = 1
		}
		if bidRatio < 0 {
			bidRatio = 0
		}
		score += bidWeight * bidRatio
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// overlapRatio returns |candidates ∩ targeting| / |candidates|, matching
// case-insensitively. Callers guarantee candidates is non-empty.
func overlapRatio(candidates []string, targeting []string) float64 {
	targetSet := make(map[string]struct{}, len(targeting))
	for _, t := range targeting {
		targetSet[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	matched := 0
	for _, c := range candidates {
		if _, ok := targetSet[strings.ToLower(strings.TrimSpace(c))]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(candidates))
}
