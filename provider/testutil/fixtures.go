package testutil

import (
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"pairpilot/model"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: "Hello, what is in this project?", Timestamp: time.Now()},
		{Role: model.RoleAssistant, Content: "It is a TypeScript app with a src/ directory.", Timestamp: time.Now()},
		{Role: model.RoleUser, Content: "what's in src/?", Timestamp: time.Now()},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: content, Timestamp: time.Now()},
	}
}

// ToolRoundTrip returns a conversation where the assistant requested two
// tools and both results follow in order.
func ToolRoundTrip() []model.Message {
	return []model.Message{
		{Role: model.RoleSystem, Content: "You are a helpful assistant."},
		{Role: model.RoleUser, Content: "Read a.ts and remember it."},
		{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{
				{ID: "call_1", Name: "read_file", Arguments: `{"path":"a.ts"}`},
				{ID: "call_2", Name: "save_memory", Arguments: `{"summary_text":"summary"}`},
			},
		},
		{Role: model.RoleTool, ToolCallID: "call_1", Content: "export const a = 1"},
		{Role: model.RoleTool, ToolCallID: "call_2", Content: "Successfully saved summary to long-term memory."},
	}
}

// TestMCPTools returns sample tool schemas for testing
func TestMCPTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		mcptypes.NewTool("read_file",
			mcptypes.WithDescription("Read a file"),
			mcptypes.WithString("path", mcptypes.Required(), mcptypes.Description("Relative path")),
		),
		mcptypes.NewTool("list_directory_recursive",
			mcptypes.WithDescription("List a directory tree"),
			mcptypes.WithString("path", mcptypes.Required()),
			mcptypes.WithNumber("maxDepth", mcptypes.DefaultNumber(3)),
		),
	}
}
