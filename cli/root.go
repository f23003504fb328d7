// Package cli is the pairpilot command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairpilot/config"
)

// Version is the release string reported by --version.
const Version = "v0.1.0"

// state is shared by all commands of one invocation.
type state struct {
	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

func (st *state) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if st.debug {
		cfg.Debug = true
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	st.cfg = cfg
	st.logger = logger
	return nil
}

func (st *state) open(opts appOptions) (*app, error) {
	return newApp(st.cfg, st.logger, opts)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}

	root := &cobra.Command{
		Use:   "pairpilot",
		Short: "Pair-programming assistant for your local projects",
		Long: `pairpilot answers questions about your indexed projects and can read,
create and edit files inside the active project through tool calls.

Index a project first, then chat with it:
  pairpilot index ~/code/myapp
  pairpilot chat --project myapp`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: st.load,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVar(&st.debug, "debug", false, "write debug logs to <data_dir>/debug.log")

	root.AddCommand(
		newChatCmd(st),
		newIndexCmd(st),
		newProjectsCmd(st),
		newMemoryCmd(st),
		newSessionsCmd(st),
		newWatchCmd(st),
		newServeCmd(st),
		newModelsCmd(st),
		newConfigCmd(st),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: "+err.Error()))
		return 1
	}
	return 0
}
