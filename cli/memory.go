package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pairpilot/storage"
)

func newMemoryCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and extend long-term memory",
	}

	var project string
	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Store an insight",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			var source *int64
			if project != "" {
				p, err := resolveProject(cmd.Context(), a.projects, project)
				if err != nil {
					return err
				}
				source = &p.ID
			}
			id, err := a.insights.Save(cmd.Context(), strings.Join(args, " "), source)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved insight %d\n", id)
			return nil
		},
	}
	add.Flags().StringVarP(&project, "project", "p", "", "record the insight as coming from this project")

	var limit int
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank stored insights by similarity to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			found, err := a.insights.FindRelevant(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("No relevant insights."))
				return nil
			}
			for _, in := range found {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
					DimStyle.Render(fmt.Sprintf("%.3f", in.Similarity)),
					storage.Preview(in.Text, terminalWidth()-8))
			}
			return nil
		},
	}
	search.Flags().IntVarP(&limit, "limit", "n", 5, "maximum number of results")

	var listLimit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored insights, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			records, err := a.insights.List(cmd.Context(), listLimit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("No insights stored."))
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
					DimStyle.Render(fmt.Sprintf("%4d", r.ID)),
					DimStyle.Render(r.Timestamp.Local().Format("2006-01-02")),
					storage.Preview(r.Text, terminalWidth()-18))
			}
			return nil
		},
	}
	list.Flags().IntVarP(&listLimit, "limit", "n", 20, "maximum number of insights")

	cmd.AddCommand(add, search, list)
	return cmd
}
