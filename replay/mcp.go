package replay

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/gwstream/pkg/utils"
)

// mcpHandler exposes the tool listing as a stateless MCP server so MCP clients
// can discover the same tools the gateway advertises. Calls are never executed.
func (s *Server) mcpHandler() (http.Handler, error) {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gwstream-replay",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	for _, t := range s.tools {
		if t.Name == "" {
			return nil, errors.New("tools file: tool without a name")
		}
		server.AddTool(&mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: objectSchema(t.InputSchema),
		}, s.handleToolCall)
	}

	return mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return server
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	), nil
}

// objectSchema returns a copy of schema with "type": "object" filled in. MCP
// requires object input schemas.
func objectSchema(schema map[string]any) map[string]any {
	out := map[string]any{}
	maps.Copy(out, schema)
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	return out
}

func (s *Server) handleToolCall(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.Debug("refusing replayed tool call", "tool", req.Params.Name)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("tool %q is not executed by the replay gateway", req.Params.Name)},
		},
		IsError: true,
	}, nil
}
