// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// frame reader for consuming a streaming chat-completion body. Every "data:"
// line is one frame; all other lines are ignored.
//
// The reader optionally tees all raw bytes verbatim to a destination writer so
// a stream can be recorded exactly as it arrived and replayed later.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import (
	"errors"
	"io"
)

const defaultChunkSize = 32 * 1024

// Reader pulls transport chunks from a source io.Reader one at a time and
// yields the payloads of complete "data:" lines.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌─────────────────────────────────┐
// │   Reader.Next()  │──▶│ optional tee destination Writer │
// └──────────────────┘   └─────────────────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │   data payload   │
// └──────────────────┘
//
// The reader never reads ahead: a new chunk is requested from the source only
// after every frame from the previous chunk has been returned by Next.
type Reader struct {
	src  io.Reader
	dest io.Writer
	buf  []byte

	lines   LineBuffer
	pending []string
	eof     bool

	// err is a read failure held back until pending drains.
	err error
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithTee writes every raw byte read from the source to w.
func WithTee(w io.Writer) ReaderOption {
	return func(r *Reader) {
		r.dest = w
	}
}

// WithChunkSize sets the size of a single read from the source.
func WithChunkSize(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.buf = make([]byte, n)
		}
	}
}

// NewReader returns a Reader that parses SSE data frames from src.
func NewReader(src io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{src: src}
	for _, opt := range opts {
		opt(r)
	}
	if r.buf == nil {
		r.buf = make([]byte, defaultChunkSize)
	}
	return r
}

// Next returns the payload of the next data frame. It blocks in the source's
// Read until a complete frame is available. Next returns io.EOF when the
// source is exhausted and every frame has been returned. A read error is
// returned only after the frames completed by that same read.
func (r *Reader) Next() (string, error) {
	for {
		if len(r.pending) > 0 {
			payload := r.pending[0]
			r.pending = r.pending[1:]
			return payload, nil
		}

		if r.err != nil {
			return "", r.err
		}
		if r.eof {
			return "", io.EOF
		}

		r.fill()
	}
}

// fill performs exactly one Read on the source and queues the frames it
// completes. Failures are kept in r.err for Next.
func (r *Reader) fill() {
	n, err := r.src.Read(r.buf)
	if n > 0 {
		if r.dest != nil {
			if _, werr := r.dest.Write(r.buf[:n]); werr != nil {
				r.err = werr
				return
			}
		}
		r.queue(r.lines.Write(r.buf[:n]))
	}

	if err != nil {
		if !errors.Is(err, io.EOF) {
			r.err = err
			return
		}

		// Source exhausted. A stream that ended without a trailing newline
		// still holds one final line.
		r.eof = true
		if line, ok := r.lines.Flush(); ok {
			r.queue([]string{line})
		}
	}
}

func (r *Reader) queue(lines []string) {
	for _, line := range lines {
		if payload, ok := DataPayload(line); ok {
			r.pending = append(r.pending, payload)
		}
	}
}
