package eventstream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/gwstream/pkg/stream"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypePrefix namespaces every published event type.
	EventTypePrefix = "gwstream."
)

// EventType returns the published type name of a stream notification
// channel, e.g. "gwstream.tool_call.local".
func EventType(kind stream.Kind) string {
	return EventTypePrefix + string(kind)
}

// StreamEvent is a transport-neutral envelope around one stream notification.
type StreamEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Source        EventSource     `json:"source"`
	Sequence      int             `json:"sequence"`
	Payload       json.RawMessage `json:"payload"`
}

// EventSource identifies the stream an event belongs to.
type EventSource struct {
	Project   string `json:"project,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Model     string `json:"model,omitempty"`
}

// NewStreamEvent wraps ev in a new envelope with a fresh event id.
func NewStreamEvent(source EventSource, seq int, ev stream.Event, at time.Time) (*StreamEvent, error) {
	if ev == nil {
		return nil, ErrNilEvent
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s payload: %w", ev.Kind(), err)
	}

	return &StreamEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventType(ev.Kind()),
		EventID:       uuid.NewString(),
		EmittedAt:     at.UTC(),
		Source:        source,
		Sequence:      seq,
		Payload:       payload,
	}, nil
}
