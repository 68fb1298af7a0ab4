// Package nop provides the publisher behind eventstream.provider = "nop".
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/gwstream/pkg/eventstream"
)

// Publisher accepts stream events and drops them.
type Publisher struct {
	discarded atomic.Int64
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(_ context.Context, event *eventstream.StreamEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	p.discarded.Add(1)
	return nil
}

// Discarded is the number of events accepted so far.
func (p *Publisher) Discarded() int64 {
	return p.discarded.Load()
}

func (*Publisher) Close() error { return nil }
