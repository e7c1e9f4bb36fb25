package workers

import (
	"ad-server/internal/observability"
	"context"

	kafka "ad-server/internal/clients/kafka"
)

// ImpressionConsumer bridges the Kafka impression stream into the worker
// pool. Impressions are best-effort analytics events: a failed write is
// logged by the pool, not redelivered.
type ImpressionConsumer struct {
	consumer *kafka.Consumer
	pool     WorkerPool
	logger   *observability.Logger
}

// NewImpressionConsumer creates a new impression consumer
func NewImpressionConsumer(consumer *kafka.Consumer, pool WorkerPool, logger *observability.Logger) *ImpressionConsumer {
	return &ImpressionConsumer{
		consumer: consumer,
		pool:     pool,
		logger:   logger,
	}
}

// Start consumes impression events until the context is cancelled. Submit
// blocks when the pool queue is full, so a slow database applies
// backpressure to the Kafka fetch loop.
func (c *ImpressionConsumer) Start(ctx context.Context) error {
	if err := c.pool.Start(ctx); err != nil {
		return err
	}

	return c.consumer.ConsumeImpressions(ctx, func(msgCtx context.Context, event ImpressionEvent) error {
		return c.pool.Submit(msgCtx, event)
	})
}

// Stop drains the pool and closes the Kafka reader
func (c *ImpressionConsumer) Stop(ctx context.Context) {
	if err := c.pool.Drain(ctx); err != nil {
		c.logger.Error(ctx, "failed to drain impression pool", err)
	}
	if err := c.consumer.Close(); err != nil {
		c.logger.Error(ctx, "failed to close kafka consumer", err)
	}
}
