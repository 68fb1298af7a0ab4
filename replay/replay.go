// Package replay provides a fake AI gateway that serves a recorded SSE
// completion stream back to clients, byte for byte.
package replay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/gwstream/pkg/gateway"
	"github.com/papercomputeco/gwstream/pkg/llm"
	"github.com/papercomputeco/gwstream/pkg/logger"
)

const (
	// MCPPath serves the tool listing as an MCP server.
	MCPPath = "/mcp"

	defaultModel = "replay"
	frameEnd     = "\n\n"
)

// ErrNoStream is returned by New when neither Stream nor StreamFile is set.
var ErrNoStream = errors.New("a recorded stream is required")

// Server replays one recorded completion stream for every streaming chat
// request it receives.
type Server struct {
	config Config
	tools  []llm.RemoteTool
	models []llm.Model
	logger *slog.Logger
	server *fiber.App

	// frames is replaced wholesale when a watched recording changes.
	mu     sync.RWMutex
	frames [][]byte
}

// New loads the recording and tool listing and registers the gateway routes.
func New(config Config) (*Server, error) {
	recording := config.Stream
	if recording == nil {
		if config.StreamFile == "" {
			return nil, ErrNoStream
		}
		data, err := os.ReadFile(config.StreamFile)
		if err != nil {
			return nil, fmt.Errorf("reading recorded stream: %w", err)
		}
		recording = data
	}

	tools, err := loadTools(config.ToolsFile)
	if err != nil {
		return nil, err
	}

	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}

	names := config.Models
	if len(names) == 0 {
		names = []string{defaultModel}
	}
	models := make([]llm.Model, 0, len(names))
	for _, n := range names {
		models = append(models, llm.Model{ID: n, Object: "model", OwnedBy: "replay"})
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		frames: splitFrames(recording),
		tools:  tools,
		models: models,
		logger: log,
		server: app,
	}

	mcpHandler, err := s.mcpHandler()
	if err != nil {
		return nil, err
	}

	app.Post(gateway.ChatCompletionsPath, s.handleChatCompletion)
	app.Get(gateway.ModelsPath, s.handleModels)
	app.Get(gateway.ToolsPath, s.handleTools)
	app.Get(gateway.HealthPath, s.handleHealth)
	app.All(MCPPath, adaptor.HTTPHandler(mcpHandler))

	return s, nil
}

func loadTools(path string) ([]llm.RemoteTool, error) {
	if path == "" {
		return []llm.RemoteTool{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tools file: %w", err)
	}

	var tools []llm.RemoteTool
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("parsing tools file: %w", err)
	}
	return tools, nil
}

// Run starts the replay server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting replay gateway",
		"listen", s.config.ListenAddr,
		"frames", len(s.recording()),
		"tools", len(s.tools),
	)

	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener starts the replay server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting replay gateway",
		"listen", listener.Addr().String(),
		"frames", len(s.recording()),
		"tools", len(s.tools),
	)

	return s.server.Listener(listener)
}

// Handler returns the server as a net/http handler, for mounting the replay
// gateway in an http.Server or an httptest server.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.server)
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	return s.server.Shutdown()
}

func (s *Server) handleChatCompletion(c *fiber.Ctx) error {
	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if !req.Stream {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "replay only serves streaming completions"})
	}

	requestID := c.Get(gateway.RequestIDHeader)
	frames := s.recording()
	s.logger.Debug("replaying stream",
		"request_id", requestID,
		"model", req.Model,
		"frames", len(frames),
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	if requestID != "" {
		c.Set(gateway.RequestIDHeader, requestID)
	}

	// io.Pipe gives per-frame backpressure: each write blocks until fasthttp
	// has consumed it and flushed the chunk.
	pr, pw := io.Pipe()
	go s.writeFrames(pw, frames, requestID)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func splitFrames(recording []byte) [][]byte {
	return bytes.SplitAfter(recording, []byte(frameEnd))
}

func (s *Server) recording() [][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

func (s *Server) writeFrames(pw *io.PipeWriter, frames [][]byte, requestID string) {
	defer pw.Close()

	for i, frame := range frames {
		if len(frame) == 0 {
			continue
		}
		if _, err := pw.Write(frame); err != nil {
			s.logger.Debug("client went away during replay",
				"request_id", requestID,
				"frame", i,
				"error", err,
			)
			return
		}
		if s.config.FrameDelay > 0 {
			time.Sleep(s.config.FrameDelay)
		}
	}
}

func (s *Server) handleModels(c *fiber.Ctx) error {
	return c.JSON(llm.ModelList{Object: "list", Data: s.models})
}

func (s *Server) handleTools(c *fiber.Ctx) error {
	return c.JSON(s.tools)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
