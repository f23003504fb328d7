package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"pairpilot/model"
	"pairpilot/sandbox"
	"pairpilot/workspace"
)

const (
	DefaultMaxReadChars = 20000
	DefaultMaxTreeChars = workspace.DefaultTreeChars
	DefaultTreeDepth    = 3

	readTruncationMarker = "\n... (Content Truncated)"
)

// resolve funnels a path argument through the sandbox. ok is false when the
// path was rejected, and msg is then the tool result.
func resolve(scope Scope, requested string) (full string, msg string, ok bool) {
	full, err := sandbox.Resolve(scope.Base, requested)
	if err != nil {
		return "", accessDenied(scope), false
	}
	return full, "", true
}

type listDirectoryHandler struct{}

func (listDirectoryHandler) Definition() mcptypes.Tool { return listDirectoryTool() }

func (listDirectoryHandler) Execute(ctx context.Context, req mcptypes.CallToolRequest, scope Scope) model.ToolExecutionResult {
	path := req.GetString("path", "")
	full, msg, ok := resolve(scope, path)
	if !ok {
		return errorResult(msg)
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return errorResult(fsError(err, path, `Error: Path not found "%s".`, "Error executing list_directory."))
	}

	var items []string
	for _, e := range entries {
		if workspace.IsExcluded(e.Name()) {
			continue
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		items = append(items, name)
	}
	if len(items) == 0 {
		return model.ToolExecutionResult{ResultText: "(Directory is empty)"}
	}
	sort.Strings(items)
	return model.ToolExecutionResult{ResultText: strings.Join(items, "\n")}
}

type listDirectoryRecursiveHandler struct {
	defaultDepth int
	maxChars     int
}

func (h listDirectoryRecursiveHandler) Definition() mcptypes.Tool {
	return listDirectoryRecursiveTool(h.defaultDepth)
}

func (h listDirectoryRecursiveHandler) Execute(ctx context.Context, req mcptypes.CallToolRequest, scope Scope) model.ToolExecutionResult {
	path := req.GetString("path", "")
	depth := req.GetInt("maxDepth", h.defaultDepth)
	if depth < 0 {
		depth = h.defaultDepth
	}

	full, msg, ok := resolve(scope, path)
	if !ok {
		return errorResult(msg)
	}

	info, err := os.Stat(full)
	if err != nil {
		return errorResult(fsError(err, path, `Error: Path not found "%s".`, "Error executing list_directory_recursive."))
	}
	if !info.IsDir() {
		return errorResult(fmt.Sprintf(`Error: Path "%s" is not a directory.`, path))
	}
	return model.ToolExecutionResult{ResultText: workspace.RenderTextTree(full, depth, h.maxChars)}
}

type readFileHandler struct {
	maxChars int
}

func (readFileHandler) Definition() mcptypes.Tool { return readFileTool() }

func (h readFileHandler) Execute(ctx context.Context, req mcptypes.CallToolRequest, scope Scope) model.ToolExecutionResult {
	path := req.GetString("path", "")
	full, msg, ok := resolve(scope, path)
	if !ok {
		return errorResult(msg)
	}

	const notFound = `Error: File not found at path "%s".`
	info, err := os.Stat(full)
	if err != nil {
		return errorResult(fsError(err, path, notFound, "Error executing read_file."))
	}
	if info.IsDir() {
		return errorResult(fmt.Sprintf(`Error: Path "%s" is a directory.`, path))
	}

	content, err := readCapped(full, h.maxChars)
	if err != nil {
		return errorResult(fsError(err, path, notFound, "Error executing read_file."))
	}
	return model.ToolExecutionResult{ResultText: content}
}

// readCapped reads at most enough bytes to hold maxChars+1 characters and
// truncates to maxChars characters including the marker.
func readCapped(path string, maxChars int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxChars*utf8.UTFMax+1)))
	if err != nil {
		return "", err
	}
	if utf8.RuneCount(data) <= maxChars {
		return string(data), nil
	}
	keep := maxChars - len(readTruncationMarker)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(string(data))
	return string(runes[:keep]) + readTruncationMarker, nil
}

type createDirectoryHandler struct{}

func (createDirectoryHandler) Definition() mcptypes.Tool { return createDirectoryTool() }
func (createDirectoryHandler) RequiresProject() bool     { return true }

func (createDirectoryHandler) Execute(ctx context.Context, req mcptypes.CallToolRequest, scope Scope) model.ToolExecutionResult {
	path := req.GetString("path", "")
	full, msg, ok := resolve(scope, path)
	if !ok {
		return errorResult(msg)
	}

	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		return errorResult(fmt.Sprintf(`Error: Directory or file already exists at path "%s".`, path))
	}
	if err := os.MkdirAll(full, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errorResult(fmt.Sprintf(`Error: Directory or file already exists at path "%s".`, path))
		}
		return errorResult("Error: Failed to create directory. " + workspace.ErrorText(err))
	}
	return model.ToolExecutionResult{
		ResultText:   fmt.Sprintf(`Successfully created directory: "%s"`, path),
		NeedsReindex: true,
	}
}

type createFileHandler struct{}

func (createFileHandler) Definition() mcptypes.Tool { return createFileTool() }
func (createFileHandler) RequiresProject() bool     { return true }

func (createFileHandler) Execute(ctx context.Context, req mcptypes.CallToolRequest, scope Scope) model.ToolExecutionResult {
	path := req.GetString("path", "")
	content := req.GetString("content", "")
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, `\`) {
		return errorResult(accessDenied(scope))
	}
	full, msg, ok := resolve(scope, path)
	if !ok {
		return errorResult(msg)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return errorResult("Error: Failed to create file. " + workspace.ErrorText(err))
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return errorResult(fmt.Sprintf(`Error: File already exists at path "%s".`, path))
	}
	if err != nil {
		return errorResult("Error: Failed to create file. " + workspace.ErrorText(err))
	}
	_, werr := f.WriteString(content)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return errorResult("Error: Failed to create file. " + workspace.ErrorText(werr))
	}

	return model.ToolExecutionResult{
		ResultText:   fmt.Sprintf(`Successfully created file: "%s"`, path),
		NeedsReindex: true,
	}
}

type editFileHandler struct{}

func (editFileHandler) Definition() mcptypes.Tool { return editFileTool() }
func (editFileHandler) RequiresProject() bool     { return true }

// Execute overwrites an existing file in place. The tree shape does not
// change, so no reindex is requested.
func (editFileHandler) Execute(ctx context.Context, req mcptypes.CallToolRequest, scope Scope) model.ToolExecutionResult {
	path := req.GetString("path", "")
	content := req.GetString("new_content", "")
	full, msg, ok := resolve(scope, path)
	if !ok {
		return errorResult(msg)
	}

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return errorResult(fmt.Sprintf(`Error: File not found at "%s".`, path))
	}
	if err != nil {
		return errorResult("Error: Failed to edit file. " + workspace.ErrorText(err))
	}
	if !info.Mode().IsRegular() {
		return errorResult(fmt.Sprintf(`Error: Path "%s" is not a file.`, path))
	}

	// O_TRUNC without O_CREATE: a file removed since the stat is not recreated.
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return errorResult("Error: Failed to edit file. " + workspace.ErrorText(err))
	}
	_, werr := f.WriteString(content)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return errorResult("Error: Failed to edit file. " + workspace.ErrorText(werr))
	}
	return model.ToolExecutionResult{ResultText: fmt.Sprintf(`Successfully edited file: "%s"`, path)}
}
