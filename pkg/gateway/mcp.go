package gateway

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/gwstream/pkg/llm"
	"github.com/papercomputeco/gwstream/pkg/utils"
)

// DiscoverMCPTools connects to the streamable HTTP MCP server at endpoint,
// lists its tools and returns them as function tools ready to declare on a
// chat request. Calls to them then classify as local.
func DiscoverMCPTools(ctx context.Context, endpoint string) ([]llm.Tool, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "gwstream",
		Version: utils.Version,
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to MCP server %s: %w", endpoint, err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("listing MCP tools: %w", err)
	}

	return llm.ToolsFromMCP(res.Tools)
}
