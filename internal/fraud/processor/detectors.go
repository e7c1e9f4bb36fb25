package processor

import (
	"ad-server/internal/store"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Evidence represents one structured observation about suspicious click
// activity on a campaign
type Evidence struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Count    int    `json:"count,omitempty"`
	Details  string `json:"details,omitempty"`
}

const (
	rapidClickInterval      = 1000 * time.Millisecond
	rapidClickHighThreshold = 5
	rapidClickCritThreshold = 10
	botMediumThreshold      = 3
	botCriticalThreshold    = 10
)

// RapidClickDetector flags bursts of clicks from the same IP. Adjacent
// clicks under a second apart are counted per IP and summed.
type RapidClickDetector struct{}

func (RapidClickDetector) Detect(clicks []store.Click) *Evidence {
	byIP := make(map[string][]time.Time)
	for _, click := range clicks {
		byIP[click.IPAddress] = append(byIP[click.IPAddress], click.CreatedAt)
	}

	rapidPairs := 0
	for _, timestamps := range byIP {
		sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })
		for i := 1; i < len(timestamps); i++ {
			if timestamps[i].Sub(timestamps[i-1]) < rapidClickInterval {
				rapidPairs++
			}
		}
	}

	if rapidPairs < rapidClickHighThreshold {
		return nil
	}
	severity := store.FraudSeverityHigh
	if rapidPairs >= rapidClickCritThreshold {
		severity = store.FraudSeverityCritical
	}
	return &Evidence{
		Type:     store.FraudEvidenceRapidClicks,
		Severity: severity,
		Count:    rapidPairs,
		Details:  fmt.Sprintf("%d clicks under 1s apart from the same IP", rapidPairs),
	}
}

var botSignatures = []string{"bot", "crawler", "spider", "curl", "wget", "python", "java", "scraper"}

// BotDetector flags clicks whose user agent is empty or carries a known
// bot/tool signature.
type BotDetector struct{}

func (BotDetector) Detect(clicks []store.Click) *Evidence {
	botLike := 0
	for _, click := range clicks {
		if isBotLike(click.UserAgent) {
			botLike++
		}
	}

	if botLike < botMediumThreshold {
		return nil
	}
	severity := store.FraudSeverityMedium
	if botLike >= botCriticalThreshold {
		severity = store.FraudSeverityCritical
	}
	return &Evidence{
		Type:     store.FraudEvidenceBotDetection,
		Severity: severity,
		Count:    botLike,
		Details:  fmt.Sprintf("%d clicks with bot-like user agents", botLike),
	}
}

func isBotLike(userAgent string) bool {
	if strings.TrimSpace(userAgent) == "" {
		return true
	}
	lowered := strings.ToLower(userAgent)
	for _, signature := range botSignatures {
		if strings.Contains(lowered, signature) {
			return true
		}
	}
	return false
}
