package processor

import (
	"ad-server/internal/config"
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCampaignNotFound = errors.New("affiliate campaign not found")
	ErrInvalidLookback  = errors.New("lookback hours out of range")
)

const (
	minLookbackHours = 1
	maxLookbackHours = 168
)

type FraudProcessor struct {
	store     FraudStore
	detectors []SignalDetector
	config    config.FraudConfig
	logger    *observability.Logger
}

// New creates a FraudProcessor with the standard detector set
func New(fraudStore FraudStore, cfg config.FraudConfig, logger *observability.Logger) FraudProcessor {
	return NewWithDetectors(fraudStore, cfg, logger, RapidClickDetector{}, BotDetector{})
}

// NewWithDetectors creates a FraudProcessor with an explicit detector set
func NewWithDetectors(fraudStore FraudStore, cfg config.FraudConfig, logger *observability.Logger, detectors ...SignalDetector) FraudProcessor {
	return FraudProcessor{
		store:     fraudStore,
		detectors: detectors,
		config:    cfg,
		logger:    logger,
	}
}

// FraudReport represents the outcome of a fraud detection run
type FraudReport struct {
	CampaignID        uuid.UUID  `json:"campaign_id"`
	FraudScore        float64    `json:"fraud_score"`
	Evidence          []Evidence `json:"evidence"`
	AlertID           *uuid.UUID `json:"alert_id,omitempty"`
	RecommendedAction string     `json:"recommended_action"`
}

// DetectFraud scans a campaign's clicks within the lookback window, runs
// every detector over the same click set, and aggregates the evidence into a
// score and a recommended action. An alert row is persisted when the score
// crosses the alert threshold. lookbackHours of 0 means the configured
// default.
func (p *FraudProcessor) DetectFraud(ctx context.Context, campaignID uuid.UUID, lookbackHours int) (FraudReport, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID.String()})

	if lookbackHours == 0 {
		lookbackHours = int(p.config.DefaultLookback.Hours())
	}
	if lookbackHours < minLookbackHours || lookbackHours > maxLookbackHours {
		return FraudReport{}, ErrInvalidLookback
	}

	if _, err := p.store.GetAffiliateCampaignByID(ctx, campaignID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return FraudReport{}, ErrCampaignNotFound
		}
		return FraudReport{}, fmt.Errorf("failed to load affiliate campaign: %w", err)
	}

	since := time.Now().Add(-time.Duration(lookbackHours) * time.Hour)
	clicks, err := p.store.GetClicksByCampaignSince(ctx, campaignID, since)
	if err != nil {
		return FraudReport{}, fmt.Errorf("failed to load clicks: %w", err)
	}

	evidence := make([]Evidence, 0, len(p.detectors))
	for _, detector := range p.detectors {
		if e := detector.Detect(clicks); e != nil {
			evidence = append(evidence, *e)
		}
	}

	score := fraudScore(evidence)
	report := FraudReport{
		CampaignID:        campaignID,
		FraudScore:        score,
		Evidence:          evidence,
		RecommendedAction: recommendedAction(score),
	}

	if score >= alertThreshold {
		reasons := make(store.StringArray, 0, len(evidence))
		for _, e := range evidence {
			reasons = append(reasons, e.Details)
		}
		alert, err := p.store.CreateFraudAlert(ctx, store.CreateFraudAlertParams{
			CampaignID: campaignID,
			FraudScore: score,
			Severity:   alertSeverity(score),
			Reasons:    reasons,
		})
		if err != nil {
			return FraudReport{}, fmt.Errorf("failed to create fraud alert: %w", err)
		}
		report.AlertID = &alert.ID
		p.logger.Warn(ctx, "fraud alert raised")
	}

	return report, nil
}

// ActiveCampaignIDs lists the campaigns the scheduled sweep fans out over.
func (p *FraudProcessor) ActiveCampaignIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := p.store.ListActiveAffiliateCampaignIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active campaigns: %w", err)
	}
	return ids, nil
}
