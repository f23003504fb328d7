package cli

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func newModelsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the configured completion provider",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List models offered by the completion provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{completion: true})
			if err != nil {
				return err
			}
			defer a.close()
			if a.providerErr != nil {
				return a.providerErr
			}

			models, err := a.provider.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			current := a.provider.GetModel()
			for _, m := range models {
				marker := "  "
				if m.InternalName == current || m.Name == current {
					marker = HighlightStyle.Render("* ")
				}
				name := m.Name
				if m.InternalName != "" && m.InternalName != m.Name {
					name = runewidth.FillRight(name, 32) + " " + DimStyle.Render(m.InternalName)
				}
				fmt.Fprintln(cmd.OutOrStdout(), marker+name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check that the completion provider is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{completion: true})
			if err != nil {
				return err
			}
			defer a.close()
			if a.providerErr != nil {
				return a.providerErr
			}
			if err := a.provider.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("%s unreachable: %w", a.cfg.Completion.Provider, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n",
				UserStyle.Render("ok"), a.cfg.Completion.Provider, a.provider.GetModel())
			return nil
		},
	})

	return cmd
}
