package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ad-server/internal/observability"
)

// WorkerPoolConfig holds configuration for the worker pool.
type WorkerPoolConfig struct {
	// NumWorkers is the number of concurrent workers to run.
	NumWorkers int

	// QueueSize is the size of the event queue buffer. When the queue is
	// full, Submit() blocks, giving the consumer backpressure.
	QueueSize int

	// DrainTimeout is the maximum time to wait for in-flight events to
	// complete during graceful shutdown.
	DrainTimeout time.Duration
}

// DefaultWorkerPoolConfig returns sensible defaults for a worker pool.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		NumWorkers:   10,
		QueueSize:    100,
		DrainTimeout: 30 * time.Second,
	}
}

type pool struct {
	config    WorkerPoolConfig
	processor EventProcessor
	logger    *observability.Logger

	eventChan chan ImpressionEvent
	wg        sync.WaitGroup

	mu       sync.Mutex
	started  bool
	draining bool
	stopped  bool
	cancelFn context.CancelFunc
}

// NewWorkerPool creates a new worker pool for processing impression events.
func NewWorkerPool(config WorkerPoolConfig, processor EventProcessor, logger *observability.Logger) WorkerPool {
	defaults := DefaultWorkerPoolConfig()
	if config.NumWorkers <= 0 {
		config.NumWorkers = defaults.NumWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = defaults.DrainTimeout
	}

	return &pool{
		config:    config,
		processor: processor,
		logger:    logger,
		eventChan: make(chan ImpressionEvent, config.QueueSize),
	}
}

// Start initializes the worker pool with N workers.
func (p *pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}
	if p.stopped {
		return fmt.Errorf("worker pool already stopped")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancelFn = cancel
	p.started = true

	for i := 0; i < p.config.NumWorkers; i++ {
		p.wg.Add(1)
		go p.worker(workerCtx)
	}

	p.logger.Info(ctx, fmt.Sprintf("started %d workers for %s processor", p.config.NumWorkers, p.processor.Name()))
	return nil
}

// Submit adds an event to the worker pool for processing.
func (p *pool) Submit(ctx context.Context, event ImpressionEvent) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return fmt.Errorf("worker pool not started")
	}
	if p.draining || p.stopped {
		p.mu.Unlock()
		return fmt.Errorf("worker pool is shutting down")
	}
	p.mu.Unlock()

	select {
	case p.eventChan <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain stops accepting new events and waits for in-flight events to
// complete, bounded by DrainTimeout.
func (p *pool) Drain(ctx context.Context) error {
	p.mu.Lock()
	if !p.started || p.draining || p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.draining = true
	p.mu.Unlock()

	close(p.eventChan)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	drainCtx, cancel := context.WithTimeout(ctx, p.config.DrainTimeout)
	defer cancel()

	select {
	case <-done:
		p.logger.Info(ctx, "worker pool drained")
		return nil
	case <-drainCtx.Done():
		p.Stop()
		return fmt.Errorf("worker pool drain timed out: %w", drainCtx.Err())
	}
}

// Stop immediately stops all workers.
func (p *pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	if p.cancelFn != nil {
		p.cancelFn()
	}
}

func (p *pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case event, ok := <-p.eventChan:
			if !ok {
				return
			}
			if err := p.processor.Process(ctx, event); err != nil {
				p.logger.Error(ctx, fmt.Sprintf("%s processor failed", p.processor.Name()), err)
			}
		case <-ctx.Done():
			return
		}
	}
}
