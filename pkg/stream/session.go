// Package stream decodes a streaming chat-completion body into typed events.
//
// A Session owns the whole per-stream state: the frame reader, the tool-call
// Assembler and the Classifier. It drives them in one read loop and
// dispatches every resulting Event synchronously to a Sink, in arrival order.
// Tool calls are dispatched once complete, in ascending slot order.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/papercomputeco/gwstream/pkg/llm"
	"github.com/papercomputeco/gwstream/pkg/logger"
	"github.com/papercomputeco/gwstream/pkg/sse"
)

var (
	// ErrNilBody is returned by Run when there is no body to read.
	ErrNilBody = errors.New("stream body is nil")

	// ErrSessionUsed is returned by Run on a Session that already ran.
	ErrSessionUsed = errors.New("stream session already used")
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateOpened
	StateReading
	StateFinalizing
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpened:
		return "opened"
	case StateReading:
		return "reading"
	case StateFinalizing:
		return "finalizing"
	case StateTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Summary describes a stream after Run returns.
type Summary struct {
	ID           string           `json:"id,omitempty"`
	Model        string           `json:"model,omitempty"`
	Usage        llm.Usage        `json:"usage"`
	HasUsage     bool             `json:"has_usage"`
	FinishReason llm.FinishReason `json:"finish_reason,omitempty"`
	Chunks       int              `json:"chunks"`
	ToolCalls    []llm.ToolCall   `json:"tool_calls,omitempty"`
	Errors       int              `json:"errors"`
}

// Session processes exactly one streaming response body.
type Session struct {
	sink       Sink
	logger     *slog.Logger
	classifier *Classifier
	assembler  *Assembler
	readerOpts []sse.ReaderOption
	requestID  string

	state   State
	summary Summary
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClassifier sets the classifier used to route completed tool calls.
func WithClassifier(c *Classifier) Option {
	return func(s *Session) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithDeclaredTools routes calls to the given tool names to the local channel.
func WithDeclaredTools(names ...string) Option {
	return func(s *Session) {
		s.classifier = NewClassifier(names...)
	}
}

// WithRequestID sets the request id reported on the open event.
func WithRequestID(id string) Option {
	return func(s *Session) {
		s.requestID = id
	}
}

// WithTee copies every raw body byte to w as it is read.
func WithTee(w io.Writer) Option {
	return func(s *Session) {
		if w != nil {
			s.readerOpts = append(s.readerOpts, sse.WithTee(w))
		}
	}
}

// WithChunkSize sets the maximum size of a single body read.
func WithChunkSize(n int) Option {
	return func(s *Session) {
		s.readerOpts = append(s.readerOpts, sse.WithChunkSize(n))
	}
}

// NewSession returns an idle Session dispatching to sink. A nil sink drops
// every event.
func NewSession(sink Sink, opts ...Option) *Session {
	if sink == nil {
		sink = SinkFunc(func(Event) {})
	}
	s := &Session{
		sink:       sink,
		logger:     logger.Nop(),
		classifier: NewClassifier(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.assembler = NewAssembler(s.logger)
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Run reads body to completion and dispatches its events.
//
// A successful stream fires open once and finish once, and Run returns a nil
// error. Decode failures and embedded upstream faults are dispatched as error
// events and the stream continues. A read failure or a done ctx ends the
// stream: complete tool calls are still dispatched, then one terminal error
// event fires, and Run returns that error. No finish event fires in that case.
//
// If body implements io.Closer it is closed when ctx is done so a blocked read
// returns promptly. Run does not otherwise close body.
func (s *Session) Run(ctx context.Context, body io.Reader) (*Summary, error) {
	if s.state != StateIdle {
		return nil, ErrSessionUsed
	}
	if body == nil {
		return nil, ErrNilBody
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if ctx.Err() != nil {
		return s.fail(ErrorKindCanceled, canceledError(ctx))
	}

	if closer, ok := body.(io.Closer); ok {
		stop := closeOnDone(ctx, closer)
		defer stop()
	}

	s.state = StateOpened
	s.logger.Debug("stream opened", "request_id", s.requestID)
	s.emit(OpenEvent{RequestID: s.requestID})

	s.state = StateReading
	reader := sse.NewReader(body, s.readerOpts...)
	for {
		if ctx.Err() != nil {
			return s.fail(ErrorKindCanceled, canceledError(ctx))
		}

		payload, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return s.finish(), nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return s.fail(ErrorKindCanceled, canceledError(ctx))
			}
			return s.fail(ErrorKindTransport, fmt.Errorf("reading stream: %w", err))
		}

		if strings.TrimSpace(payload) == "" {
			continue
		}

		frame, err := Decode(payload)
		if err != nil {
			var derr *DecodeError
			if !errors.As(err, &derr) {
				derr = &DecodeError{Message: err.Error(), Err: err}
			}
			s.logger.Warn("skipping malformed stream frame",
				"request_id", s.requestID,
				"error", derr.Message,
			)
			s.recoverable(ErrorEvent{
				ErrorKind: ErrorKindDecode,
				Message:   derr.Message,
				Raw:       payload,
				Err:       err,
			})
			continue
		}

		if frame.Done {
			return s.finish(), nil
		}

		s.handleChunk(frame.Chunk, payload)
	}
}

func (s *Session) handleChunk(chunk *llm.StreamChunk, raw string) {
	s.summary.Chunks++
	if s.summary.ID == "" {
		s.summary.ID = chunk.ID
	}
	if s.summary.Model == "" {
		s.summary.Model = chunk.Model
	}

	s.emit(ChunkEvent{Chunk: chunk})

	if chunk.Error != nil {
		s.logger.Warn("upstream error in stream",
			"request_id", s.requestID,
			"error", chunk.Error.Error(),
		)
		s.recoverable(ErrorEvent{
			ErrorKind: ErrorKindEmbedded,
			Message:   chunk.Error.Error(),
			Raw:       raw,
			Err:       chunk.Error,
		})
	}

	for i := range chunk.Choices {
		choice := &chunk.Choices[i]
		// Tool-call slots are only meaningful within one choice.
		if choice.Index != 0 {
			continue
		}

		if text, ok := choice.Delta.ReasoningText(); ok {
			s.emit(ReasoningEvent{Text: text})
		}
		if text, ok := choice.Delta.ContentText(); ok {
			s.emit(ContentEvent{Text: text})
		}
		for _, frag := range choice.Delta.ToolCalls {
			s.assembler.Merge(frag)
		}

		if choice.FinishReason != nil && *choice.FinishReason != llm.FinishReasonNone {
			s.summary.FinishReason = *choice.FinishReason
			if *choice.FinishReason == llm.FinishReasonToolCalls ||
				*choice.FinishReason == llm.FinishReasonFunctionCall {
				s.finalize()
				s.state = StateReading
			}
		}
	}

	if chunk.Usage != nil {
		s.summary.Usage = *chunk.Usage
		s.summary.HasUsage = true
		s.emit(UsageEvent{Usage: *chunk.Usage})
	}
}

// finalize dispatches every complete tool call through the classifier.
func (s *Session) finalize() {
	s.state = StateFinalizing
	for _, call := range s.assembler.FinalizeAll() {
		s.summary.ToolCalls = append(s.summary.ToolCalls, call)
		s.emit(s.classifier.Event(call))
	}
}

func (s *Session) finish() *Summary {
	s.finalize()
	s.state = StateTerminal
	s.logger.Debug("stream finished",
		"request_id", s.requestID,
		"chunks", s.summary.Chunks,
		"finish_reason", s.summary.FinishReason,
		"tool_calls", len(s.summary.ToolCalls),
	)
	s.emit(FinishEvent{Reason: s.summary.FinishReason})
	return s.snapshot()
}

func (s *Session) fail(kind ErrorKind, err error) (*Summary, error) {
	if s.state != StateIdle {
		s.finalize()
	}
	s.state = StateTerminal
	s.summary.Errors++
	s.logger.Debug("stream failed", "request_id", s.requestID, "kind", kind, "error", err)
	s.emit(ErrorEvent{
		ErrorKind: kind,
		Message:   err.Error(),
		RequestID: s.requestID,
		Err:       err,
	})
	return s.snapshot(), err
}

func (s *Session) recoverable(e ErrorEvent) {
	s.summary.Errors++
	e.RequestID = s.requestID
	s.emit(e)
}

func (s *Session) emit(e Event) {
	s.sink.Handle(e)
}

func (s *Session) snapshot() *Summary {
	sum := s.summary
	return &sum
}

func canceledError(ctx context.Context) error {
	return fmt.Errorf("stream canceled: %w", context.Cause(ctx))
}
