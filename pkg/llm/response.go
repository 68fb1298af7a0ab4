package llm

import (
	"encoding/json"
)

// ChatResponse is a complete, non-streaming chat/completions response.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object,omitempty"`
	Created int64    `json:"created,omitempty"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is a single completion choice.
type Choice struct {
	Index        int          `json:"index"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`
}

// Usage contains token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Model is one entry of the gateway's model listing.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelList is the body of GET /v1/models.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// RemoteTool is a tool the gateway can resolve and execute on the caller's
// behalf, as returned by the tool-listing endpoint.
type RemoteTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

// ErrorResponse is the error body shape shared by the gateway and the replay
// server.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Text returns the first choice's message text, or "" when there is none.
func (r *ChatResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.GetText()
}

// ExtractErrorMessage pulls a human-readable message out of a gateway error
// body. It understands {"error":{"message":...}}, {"error":"..."} and
// {"message":...}. It returns "" when none of these match.
func ExtractErrorMessage(body []byte) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	if len(envelope.Error) > 0 {
		var ce ChunkError
		if err := json.Unmarshal(envelope.Error, &ce); err == nil && ce.Message != "" {
			return ce.Message
		}
	}

	return envelope.Message
}
