package llm

import (
	"encoding/json"
)

// FinishReason says why generation stopped.
type FinishReason string

const (
	FinishReasonNone          FinishReason = ""
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
	FinishReasonFunctionCall  FinishReason = "function_call"
)

// StreamChunk is one decoded transport event of a streaming response.
type StreamChunk struct {
	ID      string         `json:"id,omitempty"`
	Object  string         `json:"object,omitempty"` // "chat.completion.chunk"
	Created int64          `json:"created,omitempty"`
	Model   string         `json:"model,omitempty"`
	Choices []StreamChoice `json:"choices"`

	// Usage is present on the trailing chunk when include_usage is requested.
	// That chunk usually carries no choices.
	Usage *Usage `json:"usage,omitempty"`

	// Error is set when an upstream provider faulted mid-stream.
	Error *ChunkError `json:"error,omitempty"`
}

// StreamChoice is a single choice delta within a chunk.
type StreamChoice struct {
	Index        int           `json:"index"`
	Delta        StreamDelta   `json:"delta"`
	FinishReason *FinishReason `json:"finish_reason,omitempty"` // nil until the final chunk
}

// StreamDelta carries the incremental message update of one choice.
type StreamDelta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`

	// Two upstream spellings exist for reasoning text. Both map to the same
	// logical signal; see ReasoningText.
	ReasoningContent *string `json:"reasoning_content,omitempty"`
	Reasoning        *string `json:"reasoning,omitempty"`

	ToolCalls []ToolCallFragment `json:"tool_calls,omitempty"`
}

// ToolCallFragment is a partial update to one tool call, addressed by slot index.
type ToolCallFragment struct {
	Index    int               `json:"index"`
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type,omitempty"`
	Function *FunctionFragment `json:"function,omitempty"`
}

// FunctionFragment carries an optional name and an argument-text increment.
type FunctionFragment struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ContentText returns the content increment and whether it is non-empty.
func (d *StreamDelta) ContentText() (string, bool) {
	if d.Content == nil || *d.Content == "" {
		return "", false
	}
	return *d.Content, true
}

// ReasoningText returns the reasoning increment and whether it is non-empty.
// When a delta carries both spellings, "reasoning" wins over
// "reasoning_content".
func (d *StreamDelta) ReasoningText() (string, bool) {
	if d.Reasoning != nil && *d.Reasoning != "" {
		return *d.Reasoning, true
	}
	if d.ReasoningContent != nil && *d.ReasoningContent != "" {
		return *d.ReasoningContent, true
	}
	return "", false
}

// ChunkError is an error embedded in a stream chunk. On the wire it is either
// a bare string or an object with a message.
type ChunkError struct {
	Message string          `json:"message"`
	Type    string          `json:"type,omitempty"`
	Code    any             `json:"code,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// UnmarshalJSON accepts both the string and the object form.
func (e *ChunkError) UnmarshalJSON(data []byte) error {
	e.Raw = append(json.RawMessage(nil), data...)

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Message = s
		return nil
	}

	var obj struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// Neither form: keep the raw text as the message rather than failing
		// the whole chunk.
		e.Message = string(data)
		return nil
	}
	e.Message = obj.Message
	e.Type = obj.Type
	e.Code = obj.Code
	return nil
}

// Error implements the error interface.
func (e *ChunkError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Raw)
}
