package tools

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"pairpilot/model"
	"pairpilot/workspace"
)

type saveMemoryHandler struct {
	memory MemorySaver
}

func (saveMemoryHandler) Definition() mcptypes.Tool { return saveMemoryTool() }

func (h saveMemoryHandler) Execute(ctx context.Context, req mcptypes.CallToolRequest, scope Scope) model.ToolExecutionResult {
	text := req.GetString("summary_text", "")
	if strings.TrimSpace(text) == "" {
		return errorResult("Error: No summary text provided to save.")
	}
	if h.memory == nil {
		return errorResult("Error: Failed to save summary to memory.")
	}
	if _, err := h.memory.Save(ctx, text, scope.ProjectID()); err != nil {
		return errorResult("Error: Failed to save summary to memory.")
	}
	return model.ToolExecutionResult{ResultText: "Successfully saved summary to long-term memory."}
}

type appendContextHandler struct{}

func (appendContextHandler) Definition() mcptypes.Tool { return appendToAIContextTool() }
func (appendContextHandler) RequiresProject() bool     { return true }

func (appendContextHandler) Execute(ctx context.Context, req mcptypes.CallToolRequest, scope Scope) model.ToolExecutionResult {
	text := req.GetString("text_to_append", "")
	if strings.TrimSpace(text) == "" {
		return errorResult("Error: No valid text provided to append.")
	}

	err := workspace.AppendNotes(scope.Base, text)
	switch {
	case err == nil:
		return model.ToolExecutionResult{ResultText: "Successfully appended notes to " + workspace.NotesFileName + " for the active project."}
	case errors.Is(err, fs.ErrPermission):
		return errorResult("Error: Permission denied when trying to write to " + workspace.NotesFileName + ".")
	default:
		return errorResult("Error: Failed to append to " + workspace.NotesFileName + ". " + workspace.ErrorText(err))
	}
}
