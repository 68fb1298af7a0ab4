package llm

// Message represents a single chat message in the gateway's OpenAI-compatible
// wire format.
type Message struct {
	Role string `json:"role"` // "system", "user", "assistant", "tool"

	// Content carries message text or structured content parts.
	Content any `json:"content,omitempty"`

	// ToolCalls lists tool invocations requested by the assistant.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID associates a tool result with a prior call.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// Name optionally identifies a function or participant.
	Name string `json:"name,omitempty"`
}

// ToolCall is a complete tool invocation. In streams this is the finalized
// form produced once every fragment for a slot has been merged.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction is the function name plus its serialized JSON arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewTextMessage creates a simple text message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: text,
	}
}

// NewAssistantToolCallMessage records the assistant turn that requested calls,
// so tool results can be appended to the conversation after it.
func NewAssistantToolCallMessage(content string, calls []ToolCall) Message {
	msg := Message{
		Role:      "assistant",
		ToolCalls: calls,
	}
	if content != "" {
		msg.Content = content
	}
	return msg
}

// NewToolResultMessage creates the "tool" message answering a tool call.
func NewToolResultMessage(callID, output string) Message {
	return Message{
		Role:       "tool",
		Content:    output,
		ToolCallID: callID,
	}
}

// GetText returns the message content when it is plain text.
func (m *Message) GetText() string {
	if s, ok := m.Content.(string); ok {
		return s
	}
	return ""
}
