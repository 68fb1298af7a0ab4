package replay

import (
	"log/slog"
	"time"
)

// Config is the replay server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8089")
	ListenAddr string

	// StreamFile is a recorded SSE stream (see "gwstream chat --record").
	// Ignored when Stream is set.
	StreamFile string

	// Stream holds the recorded bytes directly.
	Stream []byte

	// ToolsFile is an optional JSON array of tools served on /v1/tools and
	// over MCP on /mcp.
	ToolsFile string

	// Models lists the model IDs served on /v1/models. Defaults to "replay".
	Models []string

	// FrameDelay paces the replay: the server sleeps this long after writing
	// each SSE frame. Zero writes the recording as fast as the client reads.
	FrameDelay time.Duration

	// Logger defaults to a no-op logger.
	Logger *slog.Logger
}
