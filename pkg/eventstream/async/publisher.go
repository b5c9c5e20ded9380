// Package async provides a worker pool publisher that moves event publication
// off the validation path.
//
// Publish only enqueues; worker goroutines hand events to the wrapped
// publisher. A full queue drops the event rather than blocking the caller.
package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/tunegate/pkg/eventstream"
)

var (
	defaultNumWorkers     uint = 2
	defaultQueueSize      uint = 128
	defaultPublishTimeout      = 10 * time.Second
)

// ErrQueueFull is returned when an event is dropped because the queue is full.
var ErrQueueFull = errors.New("event queue full, event dropped")

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("publisher closed")

// Config is the configuration options for the async publisher.
type Config struct {
	// Publisher receives events from the workers.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered event channel (defaults to 128).
	QueueSize uint

	// PublishTimeout bounds each delivery to the wrapped publisher.
	PublishTimeout time.Duration

	Logger *slog.Logger
}

// Publisher publishes events asynchronously via a worker pool.
type Publisher struct {
	config *Config
	queue  chan *eventstream.ValidationEvent
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a new async publisher and starts its worker goroutines.
func NewPublisher(c *Config) (*Publisher, error) {
	if c.Publisher == nil {
		return nil, errors.New("async: wrapped publisher is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}

	if c.PublishTimeout == 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Publisher{
		config: c,
		queue:  make(chan *eventstream.ValidationEvent, c.QueueSize),
		logger: logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Publish enqueues the event for delivery. It never blocks.
func (p *Publisher) Publish(_ context.Context, event *eventstream.ValidationEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			"event_id", event.EventID,
			"resource", event.Resource,
		)
		return nil
	default:
		p.logger.Error("event not queued, queue full, event dropped",
			"event_id", event.EventID,
			"resource", event.Resource,
		)
		return ErrQueueFull
	}
}

// Close stops accepting events, waits for queued events to drain and closes
// the wrapped publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.config.Publisher.Close()
}

// worker continuously pulls events off the queue until it is closed.
func (p *Publisher) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("publish worker started", "worker_id", id)

	for event := range p.queue {
		p.deliver(event)
	}

	p.logger.Debug("publish worker stopped", "worker_id", id)
}

func (p *Publisher) deliver(event *eventstream.ValidationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	if err := p.config.Publisher.Publish(ctx, event); err != nil {
		p.logger.Error("event publish failed",
			"event_id", event.EventID,
			"resource", event.Resource,
			"error", err,
		)
		return
	}

	p.logger.Debug("event published", "event_id", event.EventID)
}

var _ eventstream.Publisher = (*Publisher)(nil)
