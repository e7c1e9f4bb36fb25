package workers

import (
	"context"

	kafka "ad-server/internal/clients/kafka"
)

// ImpressionEvent is an alias for the Kafka impression event type.
// This allows worker code to reference the event without importing kafka
// directly.
type ImpressionEvent = kafka.ImpressionEvent

// EventProcessor defines the interface for processing impression events.
// Implementations should be idempotent as events may be redelivered.
type EventProcessor interface {
	// Process handles a single impression event.
	Process(ctx context.Context, event ImpressionEvent) error

	// Name returns the processor name for logging.
	Name() string
}

// WorkerPool defines the interface for managing a pool of event processing
// workers.
type WorkerPool interface {
	// Start initializes the worker pool with N workers.
	Start(ctx context.Context) error

	// Submit adds an event to the worker pool for processing.
	// Blocks if the event queue is full.
	Submit(ctx context.Context, event ImpressionEvent) error

	// Drain stops accepting new events and waits for in-flight events to
	// complete.
	Drain(ctx context.Context) error

	// Stop immediately stops all workers.
	Stop()
}
