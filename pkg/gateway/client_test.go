package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gwstream/pkg/gateway"
	"github.com/papercomputeco/gwstream/pkg/llm"
)

var _ = Describe("Client", func() {
	var (
		mux    *http.ServeMux
		server *httptest.Server
		client *gateway.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		client = gateway.NewClient(server.URL, gateway.WithAPIKey("sk-test"))
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewClient", func() {
		It("normalizes the base URL", func() {
			Expect(gateway.NewClient("http://gw:8080/").BaseURL()).To(Equal("http://gw:8080"))
			Expect(gateway.NewClient("http://gw:8080/v1").BaseURL()).To(Equal("http://gw:8080"))
			Expect(gateway.NewClient("http://gw:8080/v1/").BaseURL()).To(Equal("http://gw:8080"))
		})
	})

	Describe("ChatCompletion", func() {
		It("sends a non-streaming request and parses the response", func() {
			var got map[string]any
			var auth string
			mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"id":"c1","model":"gw-1","choices":[{"index":0,"message":{"role":"assistant","content":"pong"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`)
			})

			req := &llm.ChatRequest{
				Model:         "gw-1",
				Messages:      []llm.Message{llm.NewTextMessage("user", "ping")},
				Stream:        true,
				StreamOptions: &llm.StreamOptions{IncludeUsage: true},
			}
			resp, err := client.ChatCompletion(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Text()).To(Equal("pong"))
			Expect(resp.Usage.TotalTokens).To(Equal(2))

			Expect(auth).To(Equal("Bearer sk-test"))
			Expect(got).NotTo(HaveKey("stream"))
			Expect(got).NotTo(HaveKey("stream_options"))

			// The caller's request is left untouched.
			Expect(req.Stream).To(BeTrue())
		})

		It("rejects a nil request", func() {
			_, err := client.ChatCompletion(ctx, nil)
			Expect(err).To(MatchError(gateway.ErrNilRequest))
		})

		It("returns an APIError with the extracted message", func() {
			mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
			})

			_, err := client.ChatCompletion(ctx, &llm.ChatRequest{Model: "m"})
			var apiErr *gateway.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusTooManyRequests))
			Expect(apiErr.Message).To(Equal("slow down"))
			Expect(apiErr.Error()).To(ContainSubstring("429"))
			Expect(apiErr.Error()).To(ContainSubstring("slow down"))
		})

		It("falls back to the raw body when no message is present", func() {
			mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, "upstream down\n")
			})

			_, err := client.ChatCompletion(ctx, &llm.ChatRequest{Model: "m"})
			var apiErr *gateway.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Message).To(BeEmpty())
			Expect(apiErr.Body).To(Equal("upstream down"))
			Expect(apiErr.Error()).To(ContainSubstring("upstream down"))
		})
	})

	Describe("ListModels", func() {
		It("returns the data array", func() {
			mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"object":"list","data":[{"id":"gw-1","object":"model"},{"id":"gw-2","object":"model"}]}`)
			})

			models, err := client.ListModels(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(models).To(HaveLen(2))
			Expect(models[1].ID).To(Equal("gw-2"))
		})

		It("reports unparseable bodies", func() {
			mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `<html>`)
			})

			_, err := client.ListModels(ctx)
			Expect(err).To(MatchError(ContainSubstring("parsing GET /v1/models response")))
		})
	})

	Describe("ListTools", func() {
		It("returns the remote tools", func() {
			mux.HandleFunc("GET /v1/tools", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `[{"name":"web_search","description":"Search the web","input_schema":{"type":"object"}}]`)
			})

			tools, err := client.ListTools(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(tools).To(ConsistOf(llm.RemoteTool{
				Name:        "web_search",
				Description: "Search the web",
				InputSchema: map[string]any{"type": "object"},
			}))
		})
	})

	Describe("Health", func() {
		It("is true on a success status", func() {
			mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"status":"ok"}`)
			})
			Expect(client.Health(ctx)).To(BeTrue())
		})

		It("is false on an error status", func() {
			mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			})
			Expect(client.Health(ctx)).To(BeFalse())
		})

		It("is false when the gateway is unreachable", func() {
			server.Close()
			Expect(client.Health(ctx)).To(BeFalse())
		})

		It("is false when the probe times out", func() {
			mux.HandleFunc("GET /health", func(_ http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			})
			c := gateway.NewClient(server.URL, gateway.WithTimeout(20*time.Millisecond))
			Expect(c.Health(ctx)).To(BeFalse())
		})
	})

	Describe("Proxy", func() {
		It("passes the raw response through, including error statuses", func() {
			var gotHeader, gotBody string
			mux.HandleFunc("PUT /v1/custom", func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Get("X-Custom")
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				w.Header().Set("X-Reply", "yes")
				w.WriteHeader(http.StatusTeapot)
				_, _ = io.WriteString(w, "short and stout")
			})

			header := http.Header{}
			header.Set("X-Custom", "1")
			resp, err := client.Proxy(ctx, http.MethodPut, "/v1/custom", strings.NewReader(`{"a":1}`), header)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusTeapot))
			Expect(resp.Header.Get("X-Reply")).To(Equal("yes"))
			Expect(string(resp.Body)).To(Equal("short and stout"))
			Expect(gotHeader).To(Equal("1"))
			Expect(gotBody).To(Equal(`{"a":1}`))
		})
	})

	It("sends configured headers on every request", func() {
		var got string
		mux.HandleFunc("GET /health", func(_ http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("X-Tenant")
		})
		c := gateway.NewClient(server.URL, gateway.WithHeader("X-Tenant", "acme"))
		Expect(c.Health(ctx)).To(BeTrue())
		Expect(got).To(Equal("acme"))
	})
})
