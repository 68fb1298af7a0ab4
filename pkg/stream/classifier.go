package stream

import (
	"github.com/papercomputeco/gwstream/pkg/llm"
)

// Origin says where a completed tool call is meant to run.
type Origin int

const (
	// OriginLocal is a call to a tool the caller declared in the request.
	OriginLocal Origin = iota

	// OriginRemote is a call to a tool the gateway discovered and resolved itself.
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginLocal {
		return "local"
	}
	return "remote"
}

// Classifier partitions completed tool calls by the caller's declared tool names.
type Classifier struct {
	declared map[string]struct{}
}

// NewClassifier returns a Classifier for the given declared names.
func NewClassifier(names ...string) *Classifier {
	declared := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			declared[n] = struct{}{}
		}
	}
	return &Classifier{declared: declared}
}

// ClassifierForRequest returns a Classifier seeded from the tools declared on
// req before streaming begins.
func ClassifierForRequest(req *llm.ChatRequest) *Classifier {
	if req == nil {
		return NewClassifier()
	}
	return &Classifier{declared: req.DeclaredToolNames()}
}

// Classify returns OriginLocal when name was declared. An empty name is
// always remote.
func (c *Classifier) Classify(name string) Origin {
	if name == "" {
		return OriginRemote
	}
	if _, ok := c.declared[name]; ok {
		return OriginLocal
	}
	return OriginRemote
}

// Event wraps a completed call in the event for its channel.
func (c *Classifier) Event(call llm.ToolCall) Event {
	if c.Classify(call.Function.Name) == OriginLocal {
		return LocalToolCallEvent{Call: call}
	}
	return RemoteToolCallEvent{Call: call}
}
