package stream

import (
	"strings"

	"github.com/papercomputeco/gwstream/pkg/llm"
)

// Sink receives every event of a Session, synchronously and in order.
// Handle must not block for long: the next transport chunk is not read until
// it returns.
type Sink interface {
	Handle(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

// Handle calls f(e).
func (f SinkFunc) Handle(e Event) {
	f(e)
}

// Handlers is a listener table with one optional callback per channel.
// Nil callbacks are skipped, so a consumer subscribes to any subset.
type Handlers struct {
	OnOpen           func(OpenEvent)
	OnChunk          func(*llm.StreamChunk)
	OnContent        func(string)
	OnReasoning      func(string)
	OnLocalToolCall  func(llm.ToolCall)
	OnRemoteToolCall func(llm.ToolCall)
	OnUsage          func(llm.Usage)
	OnFinish         func(FinishEvent)
	OnError          func(ErrorEvent)
}

// Handle dispatches e to the matching callback.
func (h *Handlers) Handle(e Event) {
	switch ev := e.(type) {
	case OpenEvent:
		if h.OnOpen != nil {
			h.OnOpen(ev)
		}
	case ChunkEvent:
		if h.OnChunk != nil {
			h.OnChunk(ev.Chunk)
		}
	case ContentEvent:
		if h.OnContent != nil {
			h.OnContent(ev.Text)
		}
	case ReasoningEvent:
		if h.OnReasoning != nil {
			h.OnReasoning(ev.Text)
		}
	case LocalToolCallEvent:
		if h.OnLocalToolCall != nil {
			h.OnLocalToolCall(ev.Call)
		}
	case RemoteToolCallEvent:
		if h.OnRemoteToolCall != nil {
			h.OnRemoteToolCall(ev.Call)
		}
	case UsageEvent:
		if h.OnUsage != nil {
			h.OnUsage(ev.Usage)
		}
	case FinishEvent:
		if h.OnFinish != nil {
			h.OnFinish(ev)
		}
	case ErrorEvent:
		if h.OnError != nil {
			h.OnError(ev)
		}
	}
}

type multiSink []Sink

// MultiSink fans every event out to each sink in order. Nil sinks are dropped.
func MultiSink(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiSink) Handle(e Event) {
	for _, s := range m {
		s.Handle(e)
	}
}

// Recorder is a Sink that keeps every event it receives. It is handy for
// collecting a whole stream before inspecting it.
type Recorder struct {
	Events []Event
}

// Handle appends e.
func (r *Recorder) Handle(e Event) {
	r.Events = append(r.Events, e)
}

// OfKind returns the recorded events on one channel.
func (r *Recorder) OfKind(kind Kind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// Content concatenates every recorded content increment.
func (r *Recorder) Content() string {
	var b strings.Builder
	for _, e := range r.Events {
		if c, ok := e.(ContentEvent); ok {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}
