package workers

import (
	"context"
	"encoding/json"
	"fmt"

	fraudProcessor "ad-server/internal/fraud/processor"
	"ad-server/internal/jobs"
	"ad-server/internal/observability"

	"github.com/hibiken/asynq"
)

// ScanEnqueuer produces per-campaign fraud scan tasks
type ScanEnqueuer interface {
	EnqueueFraudScanJob(ctx context.Context, payload jobs.FraudScanJobPayload) error
}

// FraudWorker handles background fraud detection jobs
type FraudWorker struct {
	processor fraudProcessor.FraudProcessor
	enqueuer  ScanEnqueuer
	logger    *observability.Logger
}

// NewFraudWorker creates a new fraud worker
func NewFraudWorker(processor fraudProcessor.FraudProcessor, enqueuer ScanEnqueuer, logger *observability.Logger) *FraudWorker {
	return &FraudWorker{
		processor: processor,
		enqueuer:  enqueuer,
		logger:    logger,
	}
}

// ProcessFraudScanTask runs detection for a single campaign
func (w *FraudWorker) ProcessFraudScanTask(ctx context.Context, task *asynq.Task) error {
	var payload jobs.FraudScanJobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		w.logger.Error(ctx, "failed to unmarshal fraud scan payload", err)
		return fmt.Errorf("failed to unmarshal fraud scan payload: %w", err)
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: payload.CampaignID.String()})

	report, err := w.processor.DetectFraud(ctx, payload.CampaignID, payload.LookbackHours)
	if err != nil {
		w.logger.Error(ctx, "fraud scan failed", err)
		return fmt.Errorf("fraud scan failed: %w", err)
	}

	w.logger.Info(ctx, fmt.Sprintf("fraud scan complete: score=%.2f action=%s", report.FraudScore, report.RecommendedAction))
	return nil
}

// ProcessFraudSweepTask fans the sweep out into one scan task per active
// campaign, so each campaign's detection run gets its own queue slot and
// retry budget. A failed enqueue skips that campaign until the next sweep.
func (w *FraudWorker) ProcessFraudSweepTask(ctx context.Context, task *asynq.Task) error {
	campaignIDs, err := w.processor.ActiveCampaignIDs(ctx)
	if err != nil {
		w.logger.Error(ctx, "fraud sweep failed", err)
		return fmt.Errorf("fraud sweep failed: %w", err)
	}

	enqueued := 0
	for _, campaignID := range campaignIDs {
		if err := w.enqueuer.EnqueueFraudScanJob(ctx, jobs.FraudScanJobPayload{CampaignID: campaignID}); err != nil {
			w.logger.Error(ctx, fmt.Sprintf("failed to enqueue fraud scan for campaign %s", campaignID), err)
			continue
		}
		enqueued++
	}

	w.logger.Info(ctx, fmt.Sprintf("fraud sweep enqueued %d of %d campaign scans", enqueued, len(campaignIDs)))
	return nil
}
