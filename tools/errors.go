package tools

import (
	"errors"
	"fmt"
	"io/fs"

	"pairpilot/model"
	"pairpilot/workspace"
)

func errorResult(text string) model.ToolExecutionResult {
	return model.ToolExecutionResult{ResultText: text}
}

func invalidArguments(tool string) string {
	return fmt.Sprintf("Error: Invalid arguments for tool %s.", tool)
}

func requiresActiveProject(tool string) string {
	return fmt.Sprintf("Error: Tool %s requires an active project context. Select a project first.", tool)
}

func toolNotFound(tool string) string {
	return fmt.Sprintf(`Error: Tool "%s" not found.`, tool)
}

func accessDenied(scope Scope) string {
	return fmt.Sprintf("Error: Access denied or invalid path. Paths must be %s and cannot contain '..'.", scope.Description)
}

// fsError maps the common filesystem failures to their dedicated messages
// and folds everything else into a generic one naming the operation.
func fsError(err error, path, notFound, generic string) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf(notFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf(`Error: Permission denied for path "%s".`, path)
	default:
		return generic + " " + workspace.ErrorText(err)
	}
}
