package llm

// ChatRequest is a chat/completions request sent to the gateway.
type ChatRequest struct {
	// Model name (e.g., "gpt-4.1", "claude-sonnet-4")
	Model string `json:"model"`

	// Conversation messages
	Messages []Message `json:"messages"`

	// Tools declared by the caller. Their names seed the set used to tell
	// locally-declared tool calls from ones the gateway resolved itself.
	Tools []Tool `json:"tools,omitempty"`

	// ToolChoice directs tool usage (e.g. "auto").
	ToolChoice any `json:"tool_choice,omitempty"`

	// Whether to stream the response
	Stream bool `json:"stream,omitempty"`

	// StreamOptions is only meaningful when Stream is set.
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`

	// Generation parameters
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// StreamOptions configures streaming behavior.
type StreamOptions struct {
	// IncludeUsage requests a trailing usage chunk.
	IncludeUsage bool `json:"include_usage"`
}

// Tool declares a callable function for the model.
type Tool struct {
	Type     string       `json:"type"` // always "function"
	Function ToolFunction `json:"function"`
}

// ToolFunction is the function contract of a declared tool.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// NewFunctionTool declares a function tool.
func NewFunctionTool(name, description string, parameters map[string]any) Tool {
	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// DeclaredToolNames returns the set of function names declared on the request.
// Empty names are never part of the set.
func (r *ChatRequest) DeclaredToolNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r.Tools))
	for _, t := range r.Tools {
		if t.Function.Name != "" {
			names[t.Function.Name] = struct{}{}
		}
	}
	return names
}
