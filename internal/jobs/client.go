package jobs

import (
	"context"
	"fmt"

	"ad-server/internal/observability"

	"github.com/hibiken/asynq"
)

// Client handles enqueueing background jobs
type Client struct {
	client *asynq.Client
	logger *observability.Logger
}

// NewClient creates a new job client
func NewClient(redisAddr string, logger *observability.Logger) *Client {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	return &Client{
		client: client,
		logger: logger,
	}
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueFraudScanJob enqueues a fraud detection run for one campaign
func (c *Client) EnqueueFraudScanJob(ctx context.Context, payload FraudScanJobPayload) error {
	task, err := NewFraudScanTask(payload)
	if err != nil {
		c.logger.Error(ctx, "failed to create fraud scan task", err)
		return fmt.Errorf("failed to create fraud scan task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		c.logger.Error(ctx, "failed to enqueue fraud scan task", err)
		return fmt.Errorf("failed to enqueue fraud scan task: %w", err)
	}

	c.logger.Info(ctx, fmt.Sprintf("enqueued fraud scan task: %s (queue: %s)", info.ID, info.Queue))
	return nil
}

// EnqueueFraudSweepJob enqueues a sweep over all active campaigns
func (c *Client) EnqueueFraudSweepJob(ctx context.Context) error {
	task, err := NewFraudSweepTask()
	if err != nil {
		c.logger.Error(ctx, "failed to create fraud sweep task", err)
		return fmt.Errorf("failed to create fraud sweep task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		c.logger.Error(ctx, "failed to enqueue fraud sweep task", err)
		return fmt.Errorf("failed to enqueue fraud sweep task: %w", err)
	}

	c.logger.Info(ctx, fmt.Sprintf("enqueued fraud sweep task: %s", info.ID))
	return nil
}
