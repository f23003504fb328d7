package mcp

import (
	"errors"
	"testing"

	"github.com/ollama/ollama/api"
)

func TestNewCallToolRequest(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		wantErr bool
	}{
		{"object", `{"path":"src","maxDepth":2}`, false},
		{"empty object", `{}`, false},
		{"malformed", `{"path":`, true},
		{"empty string", ``, true},
		{"array", `["src"]`, true},
		{"null", `null`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewCallToolRequest("list_directory", tt.args)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArguments) {
					t.Fatalf("expected ErrInvalidArguments, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Params.Name != "list_directory" {
				t.Errorf("name mismatch: %q", req.Params.Name)
			}
		})
	}
}

func TestCallToolRequestAccessors(t *testing.T) {
	req, err := NewCallToolRequest("list_directory_recursive", `{"path":"src","maxDepth":2}`)
	if err != nil {
		t.Fatal(err)
	}
	if got := req.GetString("path", ""); got != "src" {
		t.Errorf("path = %q", got)
	}
	if got := req.GetInt("maxDepth", 3); got != 2 {
		t.Errorf("maxDepth = %d", got)
	}
	if got := req.GetInt("missing", 3); got != 3 {
		t.Errorf("default = %d", got)
	}
}

func TestMissingRequired(t *testing.T) {
	tool := sampleTool()

	req, _ := NewCallToolRequest(tool.Name, `{"maxDepth":1}`)
	if missing := MissingRequired(tool, req); len(missing) != 1 || missing[0] != "path" {
		t.Errorf("expected [path], got %v", missing)
	}

	req, _ = NewCallToolRequest(tool.Name, `{"path":null}`)
	if missing := MissingRequired(tool, req); len(missing) != 1 {
		t.Errorf("null should count as missing, got %v", missing)
	}

	req, _ = NewCallToolRequest(tool.Name, `{"path":"."}`)
	if missing := MissingRequired(tool, req); len(missing) != 0 {
		t.Errorf("expected none, got %v", missing)
	}
}

func TestOllamaArgumentsRoundTrip(t *testing.T) {
	call := api.ToolCall{Function: api.ToolCallFunction{
		Name:      "read_file",
		Arguments: api.ToolCallFunctionArguments{"path": "main.go"},
	}}
	raw := OllamaArguments(call)
	if raw != `{"path":"main.go"}` {
		t.Errorf("unexpected encoding %s", raw)
	}
	back := ParseOllamaArguments(raw)
	if back["path"] != "main.go" {
		t.Errorf("round trip lost path: %v", back)
	}

	if got := OllamaArguments(api.ToolCall{}); got != "{}" {
		t.Errorf("empty call should encode as {}, got %s", got)
	}
	if got := ParseOllamaArguments(""); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
