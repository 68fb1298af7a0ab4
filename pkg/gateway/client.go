// Package gateway is an HTTP client for an OpenAI-compatible AI gateway.
//
// StreamChatCompletion issues a streaming chat completion and decodes the
// response with a stream.Session. The remaining methods are single-shot
// request/parse wrappers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/gwstream/pkg/llm"
	"github.com/papercomputeco/gwstream/pkg/logger"
)

const (
	ChatCompletionsPath = "/v1/chat/completions"
	ModelsPath          = "/v1/models"
	ToolsPath           = "/v1/tools"
	HealthPath          = "/health"

	// DefaultTimeout bounds a single call, including the whole streamed body.
	// LLM responses can be slow.
	DefaultTimeout = 5 * time.Minute

	// RequestIDHeader carries the per-call id generated for streaming requests.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 * 1024
)

// Client talks to the gateway. It is safe for concurrent use; every call owns
// its own timeout and stream state.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	headers    http.Header
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its own Timeout should
// be zero: it would also bound the streamed body.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// WithLogger sets the client logger. Streaming sessions inherit it.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a Client for the gateway at baseURL. A trailing "/v1" is
// accepted and ignored.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    normalizeBaseURL(baseURL),
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		headers:    make(http.Header),
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized gateway address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func normalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	u = strings.TrimSuffix(u, "/v1")
	return u
}

// ChatCompletion issues a non-streaming completion and parses the single
// JSON response body.
func (c *Client) ChatCompletion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	r := *req
	r.Stream = false
	r.StreamOptions = nil

	payload, err := json.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	var resp llm.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, ChatCompletionsPath, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListModels returns the models the gateway serves.
func (c *Client) ListModels(ctx context.Context) ([]llm.Model, error) {
	var list llm.ModelList
	if err := c.doJSON(ctx, http.MethodGet, ModelsPath, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// ListTools returns the tools the gateway can resolve on the caller's behalf.
func (c *Client) ListTools(ctx context.Context) ([]llm.RemoteTool, error) {
	var tools []llm.RemoteTool
	if err := c.doJSON(ctx, http.MethodGet, ToolsPath, nil, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}

// Health reports whether the gateway answered its health probe with a
// success status.
func (c *Client) Health(ctx context.Context) bool {
	err := c.doJSON(ctx, http.MethodGet, HealthPath, nil, nil)
	if err != nil {
		c.logger.Debug("health probe failed", "base_url", c.baseURL, "error", err)
		return false
	}
	return true
}

// ProxyResponse is the raw result of Proxy.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Proxy forwards an arbitrary request to path on the gateway and returns the
// raw response. Non-success statuses are returned, not treated as errors.
func (c *Client) Proxy(ctx context.Context, method, path string, body io.Reader, header http.Header) (*ProxyResponse, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	httpReq, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	return &ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// doJSON performs a request and decodes a success body into out. A nil out
// discards the body.
func (c *Client) doJSON(ctx context.Context, method, path string, payload []byte, out any) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, errBody)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return httpReq, nil
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func success(status int) bool {
	return status >= 200 && status < 300
}
