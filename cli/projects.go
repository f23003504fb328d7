package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"pairpilot/config"
	"pairpilot/model"
)

// ProjectLister is the subset of the project store used for lookups.
type ProjectLister interface {
	List(ctx context.Context) ([]model.Project, error)
}

// resolveProject finds a project by numeric ID, root path, or a fuzzy match
// on its name. The best scoring name wins.
func resolveProject(ctx context.Context, projects ProjectLister, query string) (*model.Project, error) {
	all, err := projects.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no indexed projects; run `pairpilot index <path>` first")
	}

	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		for i := range all {
			if all[i].ID == id {
				return &all[i], nil
			}
		}
	}

	if abs, err := filepath.Abs(config.ExpandPath(query)); err == nil {
		for i := range all {
			if all[i].RootPath == abs {
				return &all[i], nil
			}
		}
	}

	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no project matches %q", query)
	}
	return &all[matches[0].Index], nil
}

func newProjectsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "List and look up indexed projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List indexed projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			all, err := a.projects.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("No indexed projects."))
				return nil
			}
			for _, p := range all {
				printProject(cmd, p)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy find a project by name, ID or path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			p, err := resolveProject(cmd.Context(), a.projects, args[0])
			if err != nil {
				return err
			}
			printProject(cmd, *p)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <query>",
		Short: "Forget an indexed project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			p, err := resolveProject(cmd.Context(), a.projects, args[0])
			if err != nil {
				return err
			}
			if err := a.projects.Delete(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", HighlightStyle.Render(p.Name))
			return nil
		},
	})

	return cmd
}

func printProject(cmd *cobra.Command, p model.Project) {
	indexed := "never"
	if !p.LastIndexed.IsZero() {
		indexed = p.LastIndexed.Local().Format("Jan 2 15:04")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  %s\n",
		DimStyle.Render(fmt.Sprintf("%4d", p.ID)),
		HighlightStyle.Render(p.Name),
		p.RootPath,
		DimStyle.Render("indexed "+indexed))
}
