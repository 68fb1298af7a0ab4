package replay

import "strings"

// recording is a captured stream with content, one declared and one
// gateway-side tool call, a mid-stream finish marker and a trailing usage chunk.
var recording = strings.Join([]string{
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"}}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{"content":"lo"}}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{\"city\":"}}]}}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"Oslo\"}"}}]}}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_2","type":"function","function":{"name":"web_search","arguments":"{}"}}]}}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[],"usage":{"prompt_tokens":5,"completion_tokens":7,"total_tokens":12}}`,
	`data: [DONE]`,
}, "\n\n") + "\n\n"

const toolsJSON = `[
  {"name": "web_search", "description": "Search the web", "input_schema": {"type": "object", "properties": {"q": {"type": "string"}}}},
  {"name": "clock", "description": "Current time"}
]`
