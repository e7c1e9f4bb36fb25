package kafka

import (
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Producer publishes impression events to Kafka
type Producer struct {
	writer *kafka.Writer
	logger *observability.Logger
}

// ProducerConfig contains configuration for the Kafka producer
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// NewProducer creates a new Kafka producer
func NewProducer(config ProducerConfig, logger *observability.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(config.Brokers...),
		Topic:    config.Topic,
		Balancer: &kafka.LeastBytes{},
		// Async writes keep the serve path from blocking on the broker
		Async:       true,
		Compression: kafka.Snappy,
		BatchSize:   100,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// ImpressionEvent is the wire format for impression events
type ImpressionEvent struct {
	CampaignID uuid.UUID  `json:"campaign_id"`
	CreativeID *uuid.UUID `json:"creative_id,omitempty"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	ThreadID   *uuid.UUID `json:"thread_id,omitempty"`
	Placement  string     `json:"placement"`
	IsViewable bool       `json:"is_viewable"`
	ServedAt   time.Time  `json:"served_at"`
}

// PublishImpression publishes an impression event, keyed by campaign id so a
// campaign's impressions stay ordered within a partition.
func (p *Producer) PublishImpression(ctx context.Context, params store.CreateImpressionParams) error {
	event := ImpressionEvent{
		CampaignID: params.CampaignID,
		CreativeID: params.CreativeID,
		UserID:     params.UserID,
		ThreadID:   params.ThreadID,
		Placement:  params.Placement,
		IsViewable: params.IsViewable,
		ServedAt:   time.Now().UTC(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal impression event", err)
		return fmt.Errorf("failed to marshal impression event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.CampaignID.String()),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "placement", Value: []byte(event.Placement)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(ctx, "failed to write impression to kafka", err)
		return fmt.Errorf("failed to write impression to kafka: %w", err)
	}
	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
