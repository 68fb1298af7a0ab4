package sse

import (
	"bytes"
	"strings"
)

// dataPrefix is the SSE field marker for event payload lines.
const dataPrefix = "data:"

// LineBuffer accumulates raw transport bytes and yields complete lines.
// A trailing partial line is carried forward until a later Write completes it.
//
// The carry-over is kept as bytes rather than decoded text: a '\n' byte never
// occurs inside a multi-byte UTF-8 sequence, so a transport chunk that splits a
// character in half is reassembled before the line is ever converted to a string.
type LineBuffer struct {
	carry []byte
}

// Write appends p to the carry-over and returns every complete line, without
// its line terminator. A trailing "\r" is stripped so CRLF framing is tolerated.
func (b *LineBuffer) Write(p []byte) []string {
	b.carry = append(b.carry, p...)

	var lines []string
	for {
		i := bytes.IndexByte(b.carry, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSuffix(b.carry[:i], []byte("\r"))
		lines = append(lines, string(line))
		b.carry = b.carry[i+1:]
	}

	if len(b.carry) == 0 {
		b.carry = nil
	} else if len(lines) > 0 {
		// Re-slice into a fresh array so consumed lines can be collected.
		b.carry = append([]byte(nil), b.carry...)
	}

	return lines
}

// Flush returns the carried partial line, if any, and resets the buffer.
// Call it once the source is exhausted: a body that ends without a final
// newline still holds one last logical line.
func (b *LineBuffer) Flush() (string, bool) {
	if len(b.carry) == 0 {
		return "", false
	}
	line := string(bytes.TrimSuffix(b.carry, []byte("\r")))
	b.carry = nil
	return line, true
}

// Pending reports how many bytes are waiting for a line terminator.
func (b *LineBuffer) Pending() int {
	return len(b.carry)
}

// DataPayload returns the payload of a "data:" line. Per the SSE framing
// rules a single space after the colon is stripped if present. Any other line
// (blank keep-alives, ":" comments, "event:" or "id:" fields) reports false.
func DataPayload(line string) (string, bool) {
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	return strings.TrimPrefix(line[len(dataPrefix):], " "), true
}
