package eventstream

import "errors"

var (
	// ErrNilEvent indicates a nil event was provided to a publisher.
	ErrNilEvent = errors.New("nil stream event")

	// ErrQueueFull indicates an event was dropped because the publish queue
	// had no capacity left.
	ErrQueueFull = errors.New("publish queue full")
)
