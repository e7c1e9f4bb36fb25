package processor

import "ad-server/internal/store"

// Recommended actions, ordered by severity
const (
	ActionMonitor       = "monitor"
	ActionReview        = "review"
	ActionPauseCampaign = "pause_campaign"
	ActionBlock         = "block"
)

const (
	blockThreshold  = 0.9
	alertThreshold  = 0.7
	reviewThreshold = 0.5
)

var severityWeights = map[string]float64{
	store.FraudSeverityLow:      0.10,
	store.FraudSeverityMedium:   0.25,
	store.FraudSeverityHigh:     0.50,
	store.FraudSeverityCritical: 1.00,
}

// fraudScore aggregates evidence severities into a score clamped to [0, 1]
func fraudScore(evidence []Evidence) float64 {
	score := 0.0
	for _, e := range evidence {
		score += severityWeights[e.Severity]
	}
	if score > 1 {
		score = 1
	}
	return score
}

// recommendedAction maps a fraud score to the discrete response
func recommendedAction(score float64) string {
	switch {
	case score >= blockThreshold:
		return ActionBlock
	case score >= alertThreshold:
		return ActionPauseCampaign
	case score >= reviewThreshold:
		return ActionReview
	default:
		return ActionMonitor
	}
}

// alertSeverity derives the persisted alert severity from the same score
// thresholds that drive the recommended action. Only called for scores at or
// above the alert threshold.
func alertSeverity(score float64) string {
	if score >= blockThreshold {
		return store.FraudSeverityCritical
	}
	return store.FraudSeverityHigh
}
