package scheduler

import (
	"ad-server/internal/jobs"
	"context"
	"time"
)

// FraudSweepJob periodically enqueues a sweep over all active affiliate
// campaigns. The sweep itself runs on the worker, so the scheduler only pays
// for the enqueue.
type FraudSweepJob struct {
	client   *jobs.Client
	interval time.Duration
}

// NewFraudSweepJob creates the scheduled fraud sweep
func NewFraudSweepJob(client *jobs.Client, interval time.Duration) *FraudSweepJob {
	return &FraudSweepJob{
		client:   client,
		interval: interval,
	}
}

func (j *FraudSweepJob) Name() string {
	return "fraud-sweep"
}

func (j *FraudSweepJob) Schedule() time.Duration {
	return j.interval
}

func (j *FraudSweepJob) Run(ctx context.Context) error {
	return j.client.EnqueueFraudSweepJob(ctx)
}
