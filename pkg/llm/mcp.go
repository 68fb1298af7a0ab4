package llm

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolsFromMCP declares tools listed by an MCP session as function tools, so a
// caller can forward its own MCP servers' tools to the gateway. Calls to these
// tools classify as locally-declared.
func ToolsFromMCP(tools []*mcp.Tool) ([]Tool, error) {
	declared := make([]Tool, 0, len(tools))
	for _, t := range tools {
		if t == nil || t.Name == "" {
			continue
		}

		params, err := schemaMap(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("converting input schema for tool %q: %w", t.Name, err)
		}

		declared = append(declared, NewFunctionTool(t.Name, t.Description, params))
	}
	return declared, nil
}

// schemaMap normalizes any JSON-schema representation into a plain map.
func schemaMap(schema any) (map[string]any, error) {
	if schema == nil {
		return nil, nil
	}
	if m, ok := schema.(map[string]any); ok {
		return m, nil
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
