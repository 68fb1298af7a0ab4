package stream

import (
	"context"
	"errors"
	"time"
)

// ErrStreamTimeout is the cancellation cause when a stream's own timeout elapses.
var ErrStreamTimeout = errors.New("stream timeout elapsed")

// Bridge merges the caller's context with a per-call timeout. The returned
// context is done when either parent is done or timeout elapses; context.Cause
// distinguishes the two (ErrStreamTimeout for the timeout). A timeout <= 0
// means no internal deadline. The caller must call cancel.
func Bridge(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeoutCause(parent, timeout, ErrStreamTimeout)
}

// closeOnDone closes c as soon as ctx is done, which unblocks a Read in
// progress on the body. The returned stop func detaches the watcher.
func closeOnDone(ctx context.Context, c interface{ Close() error }) (stop func() bool) {
	return context.AfterFunc(ctx, func() {
		_ = c.Close()
	})
}
