// Package worker provides an asynchronous worker pool that publishes stream
// events using the provided eventstream.Publisher.
//
// The pool decouples broker round trips from stream dispatch so that a slow
// or unavailable broker never stalls decoding of the response body.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/gwstream/pkg/eventstream"
	"github.com/papercomputeco/gwstream/pkg/logger"
)

var (
	defaultNumWorkers     uint = 2
	defaultJobQueueSize   uint = 256
	defaultPublishTimeout      = 10 * time.Second
)

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher delivers events to the backend.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// PublishTimeout bounds a single Publish call (defaults to 10s).
	PublishTimeout time.Duration

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Pool publishes stream events asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan *eventstream.StreamEvent
	wg     sync.WaitGroup
	logger *slog.Logger

	mu        sync.Mutex
	closed    bool
	published int
	failed    int
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, fmt.Errorf("worker pool requires a publisher")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.PublishTimeout == 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *eventstream.StreamEvent, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits an event for publishing by the worker pool.
// Returns true if enqueued, false if the queue is full or the pool is closed,
// resulting in the event being dropped.
func (p *Pool) Enqueue(event *eventstream.StreamEvent) bool {
	if event == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			"event_type", event.EventType,
			"request_id", event.Source.RequestID,
		)
		return true
	default:
		p.logger.Error("event not queued, queue full, event dropped",
			"event_type", event.EventType,
			"request_id", event.Source.RequestID,
		)
		return false
	}
}

// Close signals workers to stop and waits for queued events to drain.
// It does not close the publisher.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// Stats returns the number of events published and the number that failed.
func (p *Pool) Stats() (published, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published, p.failed
}

// worker is the inner worker thread that continuously pulls events off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for event := range p.queue {
		p.publish(event)
	}

	p.logger.Debug("publish worker stopped", "worker_id", id)
}

func (p *Pool) publish(event *eventstream.StreamEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	err := p.config.Publisher.Publish(ctx, event)

	p.mu.Lock()
	if err != nil {
		p.failed++
	} else {
		p.published++
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("event publish failed",
			"event_type", event.EventType,
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.logger.Debug("event published",
		"event_type", event.EventType,
		"event_id", event.EventID,
	)
}
