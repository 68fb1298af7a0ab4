package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/papercomputeco/gwstream/pkg/llm"
	"github.com/papercomputeco/gwstream/pkg/stream"
)

// StreamChatCompletion issues req as a streaming completion with usage
// reporting enabled and dispatches the decoded events to sink. It blocks until
// the stream ends.
//
// The call is bounded by both ctx and the client timeout. Tools declared on
// req are routed to the local tool-call channel; any other completed call goes
// to the remote channel. opts are applied to the session after the client's
// defaults.
//
// A transport failure or a non-success status before the body is established
// is dispatched as one error event, with no open or finish event, and
// returned. An *APIError is returned for non-success statuses.
func (c *Client) StreamChatCompletion(
	ctx context.Context,
	req *llm.ChatRequest,
	sink stream.Sink,
	opts ...stream.Option,
) (*stream.Summary, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r := *req
	r.Stream = true
	r.StreamOptions = &llm.StreamOptions{IncludeUsage: true}

	payload, err := json.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	requestID := uuid.NewString()
	log := c.logger.With("request_id", requestID)

	// The bridge starts now, when the request is issued, and is owned by this
	// call alone.
	ctx, cancel := stream.Bridge(ctx, c.timeout)
	defer cancel()

	httpReq, err := c.newRequest(ctx, http.MethodPost, ChatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set(RequestIDHeader, requestID)

	log.Debug("sending streaming chat request",
		"base_url", c.baseURL,
		"model", r.Model,
		"message_count", len(r.Messages),
		"tool_count", len(r.Tools),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		kind := stream.ErrorKindTransport
		if ctx.Err() != nil {
			kind = stream.ErrorKindCanceled
			err = fmt.Errorf("stream canceled: %w", context.Cause(ctx))
		} else {
			err = fmt.Errorf("sending chat request: %w", err)
		}
		return nil, reject(sink, requestID, kind, err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(resp.StatusCode, errBody)
		log.Debug("gateway rejected streaming request", "status", resp.StatusCode, "error", apiErr.Message)
		return nil, reject(sink, requestID, stream.ErrorKindStatus, apiErr)
	}

	sessionOpts := []stream.Option{
		stream.WithLogger(log),
		stream.WithClassifier(stream.ClassifierForRequest(req)),
		stream.WithRequestID(requestID),
	}
	session := stream.NewSession(sink, append(sessionOpts, opts...)...)
	return session.Run(ctx, resp.Body)
}

// reject dispatches a failure that happened before the stream opened.
func reject(sink stream.Sink, requestID string, kind stream.ErrorKind, err error) error {
	if sink != nil {
		sink.Handle(stream.ErrorEvent{
			ErrorKind: kind,
			Message:   err.Error(),
			RequestID: requestID,
			Err:       err,
		})
	}
	return err
}
