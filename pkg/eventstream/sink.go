package eventstream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/papercomputeco/gwstream/pkg/logger"
	"github.com/papercomputeco/gwstream/pkg/stream"
)

// Sink mirrors stream events onto an Enqueuer as envelopes. It never blocks
// stream dispatch: events that cannot be queued are dropped and counted.
//
// A Sink may outlive many streams, e.g. the turns of an interactive chat.
// Attribution starts over at each open event, or at an error carrying a new
// request id, and is cleared when a stream finishes or fails. The model is
// learned from the first chunk that carries one. Sequence numbers count from
// 1 within each stream.
type Sink struct {
	queue  Enqueuer
	kinds  map[stream.Kind]bool
	now    func() time.Time
	logger *slog.Logger

	mu      sync.Mutex
	source  EventSource
	seq     int
	dropped int
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithKinds limits the sink to the given channels. By default every channel
// except the raw chunk channel is mirrored.
func WithKinds(kinds ...stream.Kind) SinkOption {
	return func(s *Sink) {
		s.kinds = make(map[stream.Kind]bool, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = true
		}
	}
}

// WithProject tags every envelope with a project name.
func WithProject(project string) SinkOption {
	return func(s *Sink) {
		s.source.Project = project
	}
}

// WithClock overrides the envelope timestamp source.
func WithClock(now func() time.Time) SinkOption {
	return func(s *Sink) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the sink logger.
func WithLogger(l *slog.Logger) SinkOption {
	return func(s *Sink) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSink returns a Sink that enqueues onto q.
func NewSink(q Enqueuer, opts ...SinkOption) *Sink {
	s := &Sink{
		queue:  q,
		now:    time.Now,
		logger: logger.Nop(),
	}
	WithKinds(
		stream.KindOpen,
		stream.KindContent,
		stream.KindReasoning,
		stream.KindLocalToolCall,
		stream.KindRemoteToolCall,
		stream.KindUsage,
		stream.KindFinish,
		stream.KindError,
	)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle implements stream.Sink.
func (s *Sink) Handle(ev stream.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev == nil {
		return
	}

	switch e := ev.(type) {
	case stream.OpenEvent:
		s.begin(e.RequestID)
	case stream.ChunkEvent:
		if s.source.Model == "" && e.Chunk != nil {
			s.source.Model = e.Chunk.Model
		}
	case stream.ErrorEvent:
		if e.RequestID != "" && e.RequestID != s.source.RequestID {
			s.begin(e.RequestID)
		}
	}
	defer func() {
		if ended(ev) {
			s.begin("")
		}
	}()

	if !s.kinds[ev.Kind()] {
		return
	}

	s.seq++
	envelope, err := NewStreamEvent(s.source, s.seq, ev, s.now())
	if err != nil {
		s.logger.Error("could not build stream event", "kind", ev.Kind(), "error", err)
		return
	}

	if !s.queue.Enqueue(envelope) {
		s.dropped++
		s.logger.Warn("stream event dropped",
			"event_type", envelope.EventType,
			"request_id", s.source.RequestID,
			"error", ErrQueueFull,
		)
	}
}

// begin resets attribution for a new stream, keeping the project.
func (s *Sink) begin(requestID string) {
	s.source = EventSource{Project: s.source.Project, RequestID: requestID}
	s.seq = 0
}

func ended(ev stream.Event) bool {
	switch e := ev.(type) {
	case stream.FinishEvent:
		return true
	case stream.ErrorEvent:
		return e.Terminal()
	default:
		return false
	}
}

// Dropped returns the number of events the queue refused.
func (s *Sink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
