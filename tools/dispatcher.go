package tools

import (
	"context"
	"fmt"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"pairpilot/mcp"
	"pairpilot/model"
)

// Dispatcher runs one tool call through argument parsing, base path
// resolution and execution.
type Dispatcher struct {
	registry *Registry
	homeDir  string
	logger   *zap.Logger
}

// NewDispatcher falls back to homeDir as the base path for read-only tools
// when no project is active.
func NewDispatcher(registry *Registry, homeDir string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, homeDir: homeDir, logger: logger.Named("tools")}
}

// Registry returns the registry the dispatcher reads from.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Tools returns every registered tool schema, for the completion request.
func (d *Dispatcher) Tools() []mcptypes.Tool {
	return d.registry.Tools()
}

// Dispatch executes call. It never returns an error: every failure is
// rendered as result text.
func (d *Dispatcher) Dispatch(ctx context.Context, call model.ToolCall, project *model.Project) model.ToolExecutionResult {
	log := d.logger.With(zap.String("tool", call.Name), zap.String("call_id", call.ID))

	req, err := mcp.NewCallToolRequest(call.Name, call.Arguments)
	if err != nil {
		log.Warn("malformed tool arguments", zap.Error(err))
		return errorResult(invalidArguments(call.Name))
	}

	handler, known := d.registry.Get(call.Name)
	if known {
		if missing := mcp.MissingRequired(handler.Definition(), req); len(missing) > 0 {
			log.Warn("tool call missing required arguments", zap.Strings("missing", missing))
			return errorResult(invalidArguments(call.Name))
		}
	}

	var scope Scope
	switch {
	case project != nil && project.RootPath != "":
		scope = Scope{
			Base:        project.RootPath,
			Description: fmt.Sprintf("relative to the active project root (%s)", project.Name),
			Project:     project,
		}
	case known && requiresProject(handler):
		return errorResult(requiresActiveProject(call.Name))
	default:
		scope = Scope{Base: d.homeDir, Description: "relative to the user's home directory"}
	}

	if !known {
		log.Warn("unknown tool requested")
		return errorResult(toolNotFound(call.Name))
	}

	start := time.Now()
	result := handler.Execute(ctx, req, scope)
	log.Debug("tool executed",
		zap.String("base", scope.Base),
		zap.Bool("needs_reindex", result.NeedsReindex),
		zap.Int("result_chars", len(result.ResultText)),
		zap.Duration("took", time.Since(start)))
	return result
}
