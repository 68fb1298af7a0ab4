package eventstream

import "context"

// Publisher publishes stream events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *StreamEvent) error
	Close() error
}

// Enqueuer accepts events for asynchronous publishing. Enqueue reports false
// when the event was dropped.
type Enqueuer interface {
	Enqueue(event *StreamEvent) bool
}
