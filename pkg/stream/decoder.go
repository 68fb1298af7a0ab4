package stream

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/papercomputeco/gwstream/pkg/llm"
)

// DoneSentinel is the payload that terminates an event stream.
const DoneSentinel = "[DONE]"

// Frame is the decoded form of one data payload: either the terminator or a chunk.
type Frame struct {
	Done  bool
	Chunk *llm.StreamChunk
}

// DecodeError is returned by Decode when a payload is not a valid chunk.
// Message is a best-effort description extracted from the raw text.
type DecodeError struct {
	Raw     string
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding stream frame: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses one data payload.
func Decode(payload string) (Frame, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == DoneSentinel {
		return Frame{Done: true}, nil
	}

	chunk := &llm.StreamChunk{}
	if err := json.Unmarshal([]byte(trimmed), chunk); err != nil {
		return Frame{}, &DecodeError{
			Raw:     payload,
			Message: extractMessage(trimmed, err),
			Err:     err,
		}
	}

	return Frame{Chunk: chunk}, nil
}

var messageFieldRe = regexp.MustCompile(`"message"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// extractMessage scans a frame that failed to decode for an embedded message.
// A top-level "message" is preferred over a nested one such as
// {"error":{"message":...}}.
func extractMessage(raw string, cause error) string {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		if msg, ok := doc["message"].(string); ok && msg != "" {
			return msg
		}
		switch e := doc["error"].(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}

	// Truncated or otherwise broken JSON: look for the field textually.
	var nested string
	for _, loc := range messageFieldRe.FindAllStringSubmatchIndex(raw, -1) {
		msg := unquote(raw[loc[2]:loc[3]])
		if msg == "" {
			continue
		}
		if braceDepth(raw[:loc[0]]) <= 1 {
			return msg
		}
		if nested == "" {
			nested = msg
		}
	}
	if nested != "" {
		return nested
	}

	return fmt.Sprintf("malformed stream frame: %v", cause)
}

// braceDepth returns the object nesting depth at the end of s, ignoring braces
// inside string literals.
func braceDepth(s string) int {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
		}
	}
	return depth
}

func unquote(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}
