package kafka

import (
	"ad-server/internal/observability"
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Consumer consumes impression events from Kafka
type Consumer struct {
	reader *kafka.Reader
	logger *observability.Logger
}

// ConsumerConfig contains configuration for the Kafka consumer
type ConsumerConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(config ConsumerConfig, logger *observability.Logger) *Consumer {
	if config.MinBytes == 0 {
		config.MinBytes = 10e3 // 10KB
	}
	if config.MaxBytes == 0 {
		config.MaxBytes = 10e6 // 10MB
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     config.Brokers,
		Topic:       config.Topic,
		GroupID:     config.GroupID,
		MinBytes:    config.MinBytes,
		MaxBytes:    config.MaxBytes,
		StartOffset: kafka.FirstOffset,
		// Manual commit: a message is committed only after its impression
		// row is written
		CommitInterval: 0,
	})

	return &Consumer{
		reader: reader,
		logger: logger,
	}
}

// ConsumeImpressions continuously consumes impression events and hands them
// to the handler. Messages are committed after successful processing, so a
// failed write is retried on the next fetch.
func (c *Consumer) ConsumeImpressions(ctx context.Context, handler func(context.Context, ImpressionEvent) error) error {
	c.logger.Info(ctx, "starting impression consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info(ctx, "stopping impression consumer")
			return ctx.Err()
		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error(ctx, "failed to fetch message from kafka", err)
				continue
			}

			var event ImpressionEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Error(ctx, "failed to unmarshal impression event", err)
				// Commit to skip the malformed message
				c.reader.CommitMessages(ctx, msg)
				continue
			}

			msgCtx := observability.WithFields(ctx,
				observability.Field{Key: "campaign_id", Value: event.CampaignID.String()},
				observability.Field{Key: "partition", Value: msg.Partition},
				observability.Field{Key: "offset", Value: msg.Offset},
			)

			if err := handler(msgCtx, event); err != nil {
				c.logger.Error(msgCtx, "failed to process impression event", err)
				continue
			}

			if err := c.reader.CommitMessages(msgCtx, msg); err != nil {
				c.logger.Error(msgCtx, "failed to commit kafka message", err)
			}
		}
	}
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
