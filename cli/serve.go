package cli

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairpilot/config"
	"pairpilot/model"
	"pairpilot/tools"
)

// Reindexer receives projects whose structure changed.
type Reindexer interface {
	Schedule(project model.Project)
}

func newServeCmd(st *state) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the file and memory tools as an MCP stdio server",
		Long: `Serve the assistant's tools over the Model Context Protocol on stdin/stdout.
Paths resolve against the given project root, or the home directory when no
project is given. Logs never go to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			var active *model.Project
			if project != "" {
				if active, err = resolveProject(cmd.Context(), a.projects, project); err != nil {
					return err
				}
			}

			registry := tools.NewDefaultRegistry(a.insights, tools.Limits{
				MaxReadChars:     a.cfg.Tools.MaxReadChars,
				MaxTreeChars:     a.cfg.Tools.MaxTreeChars,
				DefaultTreeDepth: a.cfg.Tools.DefaultTreeDepth,
			})
			d := tools.NewDispatcher(registry, config.GetHomeDir(), a.logger)
			return server.ServeStdio(newToolServer(d, active, a.scheduler, a.logger))
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project whose root scopes every path")
	return cmd
}

func newToolServer(d *tools.Dispatcher, project *model.Project, reindexer Reindexer, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"pairpilot",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, tool := range d.Tools() {
		s.AddTool(tool, toolHandler(d, tool.Name, project, reindexer, logger))
	}
	return s
}

func toolHandler(d *tools.Dispatcher, name string, project *model.Project, reindexer Reindexer, logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
		arguments := "{}"
		if args := req.GetArguments(); len(args) > 0 {
			raw, err := json.Marshal(args)
			if err != nil {
				return mcptypes.NewToolResultError(err.Error()), nil
			}
			arguments = string(raw)
		}

		call := model.ToolCall{ID: "mcp_" + uuid.NewString(), Name: name, Arguments: arguments}
		result := d.Dispatch(ctx, call, project)
		if result.NeedsReindex && project != nil && reindexer != nil {
			logger.Debug("tool changed project structure", zap.String("tool", name))
			reindexer.Schedule(*project)
		}
		return mcptypes.NewToolResultText(result.ResultText), nil
	}
}
