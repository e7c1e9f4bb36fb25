package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Job type constants
const (
	// Per-campaign detection run, enqueued on demand
	TypeFraudScan = "fraud:scan"
	// Periodic sweep over every active affiliate campaign
	TypeFraudSweep = "fraud:sweep"
)

// Queue names
const (
	QueueHigh   = "high"
	QueueMedium = "medium"
	QueueLow    = "low"
)

// FraudScanJobPayload represents a fraud detection job for one campaign
type FraudScanJobPayload struct {
	CampaignID    uuid.UUID `json:"campaign_id"`
	LookbackHours int       `json:"lookback_hours,omitempty"`
}

// NewFraudScanTask creates a new fraud scan task
func NewFraudScanTask(payload FraudScanJobPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeFraudScan, data, asynq.Queue(QueueMedium), asynq.MaxRetry(3)), nil
}

// NewFraudSweepTask creates a new fraud sweep task
func NewFraudSweepTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeFraudSweep, nil, asynq.Queue(QueueLow), asynq.MaxRetry(1)), nil
}
