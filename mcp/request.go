package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
)

// ErrInvalidArguments marks tool arguments that are not a JSON object.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// NewCallToolRequest decodes a tool call's JSON argument string into an
// mcp-go request. Only a JSON object is accepted.
func NewCallToolRequest(name, arguments string) (mcptypes.CallToolRequest, error) {
	var req mcptypes.CallToolRequest
	req.Params.Name = name

	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return req, fmt.Errorf("%w for %s: %v", ErrInvalidArguments, name, err)
	}
	if args == nil {
		return req, fmt.Errorf("%w for %s: not an object", ErrInvalidArguments, name)
	}
	req.Params.Arguments = args
	return req, nil
}

// MissingRequired lists the schema's required parameters absent from req.
func MissingRequired(tool mcptypes.Tool, req mcptypes.CallToolRequest) []string {
	args := req.GetArguments()
	var missing []string
	for _, name := range tool.InputSchema.Required {
		if v, ok := args[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// OllamaArguments encodes an Ollama tool call's argument map as the JSON
// string the other providers use.
func OllamaArguments(call api.ToolCall) string {
	if len(call.Function.Arguments) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(call.Function.Arguments)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// ParseOllamaArguments is the inverse of OllamaArguments.
func ParseOllamaArguments(arguments string) api.ToolCallFunctionArguments {
	args := api.ToolCallFunctionArguments{}
	if arguments == "" {
		return args
	}
	_ = json.Unmarshal([]byte(arguments), &args)
	return args
}
