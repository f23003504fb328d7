package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pairpilot/config"
)

func newIndexCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "index [path]",
		Short: "Scan a directory and store it as a project",
		Long: `Scan a directory, store its structure snapshot and make it available as a
project. Indexing an already known root refreshes its snapshot. The current
directory is used when no path is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			root, err := filepath.Abs(config.ExpandPath(root))
			if err != nil {
				return err
			}
			info, err := os.Stat(root)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", root)
			}

			a, err := st.open(appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.scheduler.IndexNow(cmd.Context(), root)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (id %d)\n",
				UserStyle.Render("Indexed"), HighlightStyle.Render(p.Name), p.ID)
			return nil
		},
	}
}
