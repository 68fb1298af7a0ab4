package stream

import (
	"github.com/papercomputeco/gwstream/pkg/llm"
)

// Kind names a notification channel.
type Kind string

const (
	KindOpen           Kind = "open"
	KindChunk          Kind = "chunk"
	KindContent        Kind = "content"
	KindReasoning      Kind = "reasoning"
	KindLocalToolCall  Kind = "tool_call.local"
	KindRemoteToolCall Kind = "tool_call.remote"
	KindUsage          Kind = "usage"
	KindFinish         Kind = "finish"
	KindError          Kind = "error"
)

// Kinds lists every notification channel in dispatch-table order.
var Kinds = []Kind{
	KindOpen,
	KindChunk,
	KindContent,
	KindReasoning,
	KindLocalToolCall,
	KindRemoteToolCall,
	KindUsage,
	KindFinish,
	KindError,
}

// Event is a notification emitted by a Session. The set of implementations is
// closed: only the types in this file satisfy it.
type Event interface {
	Kind() Kind
	isEvent()
}

// OpenEvent fires once the response body is established.
type OpenEvent struct {
	RequestID string `json:"request_id,omitempty"`
}

// ChunkEvent fires once per decoded transport event, in raw structured form.
type ChunkEvent struct {
	Chunk *llm.StreamChunk `json:"chunk"`
}

// ContentEvent carries a content text increment.
type ContentEvent struct {
	Text string `json:"text"`
}

// ReasoningEvent carries a reasoning text increment.
type ReasoningEvent struct {
	Text string `json:"text"`
}

// LocalToolCallEvent carries a completed call to a tool the caller declared.
// The caller is expected to execute it and continue the conversation.
type LocalToolCallEvent struct {
	Call llm.ToolCall `json:"call"`
}

// RemoteToolCallEvent carries a completed call to a tool the gateway resolved
// on the caller's behalf. It usually needs no client-side execution.
type RemoteToolCallEvent struct {
	Call llm.ToolCall `json:"call"`
}

// UsageEvent carries token totals, unmodified from the wire.
type UsageEvent struct {
	Usage llm.Usage `json:"usage"`
}

// FinishEvent fires exactly once when a stream completes successfully.
type FinishEvent struct {
	Reason llm.FinishReason `json:"reason,omitempty"`
}

// ErrorKind classifies an ErrorEvent.
type ErrorKind string

const (
	// ErrorKindDecode is a malformed frame. The stream continues.
	ErrorKindDecode ErrorKind = "decode"

	// ErrorKindEmbedded is an upstream fault carried inside a valid chunk.
	// The stream continues.
	ErrorKindEmbedded ErrorKind = "embedded"

	// ErrorKindStatus is a non-success HTTP status before streaming began.
	ErrorKindStatus ErrorKind = "status"

	// ErrorKindTransport is a connection or read failure. Terminal.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindCanceled is an external cancellation or an elapsed timeout. Terminal.
	ErrorKindCanceled ErrorKind = "canceled"
)

// ErrorEvent reports a recoverable or terminal fault.
type ErrorEvent struct {
	ErrorKind ErrorKind `json:"error_kind"`
	Message   string    `json:"message"`

	// RequestID is the id of the call that failed. It is set even when the
	// call was rejected before any open event.
	RequestID string `json:"request_id,omitempty"`

	// Raw holds the offending frame text for decode and embedded errors.
	Raw string `json:"raw,omitempty"`

	Err error `json:"-"`
}

// Terminal reports whether the error ended the stream.
func (e ErrorEvent) Terminal() bool {
	switch e.ErrorKind {
	case ErrorKindDecode, ErrorKindEmbedded:
		return false
	default:
		return true
	}
}

func (OpenEvent) Kind() Kind           { return KindOpen }
func (ChunkEvent) Kind() Kind          { return KindChunk }
func (ContentEvent) Kind() Kind        { return KindContent }
func (ReasoningEvent) Kind() Kind      { return KindReasoning }
func (LocalToolCallEvent) Kind() Kind  { return KindLocalToolCall }
func (RemoteToolCallEvent) Kind() Kind { return KindRemoteToolCall }
func (UsageEvent) Kind() Kind          { return KindUsage }
func (FinishEvent) Kind() Kind         { return KindFinish }
func (ErrorEvent) Kind() Kind          { return KindError }

func (OpenEvent) isEvent()           {}
func (ChunkEvent) isEvent()          {}
func (ContentEvent) isEvent()        {}
func (ReasoningEvent) isEvent()      {}
func (LocalToolCallEvent) isEvent()  {}
func (RemoteToolCallEvent) isEvent() {}
func (UsageEvent) isEvent()          {}
func (FinishEvent) isEvent()         {}
func (ErrorEvent) isEvent()          {}
