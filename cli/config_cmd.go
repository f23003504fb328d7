package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pairpilot/config"
)

func newConfigCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration and manage API keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print resolved paths and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			out := cmd.OutOrStdout()
			row := func(k, v string) {
				fmt.Fprintf(out, "%-20s %s\n", DimStyle.Render(k), v)
			}
			row("settings", config.GetSettingsFilePath())
			row("data dir", cfg.DataDir())
			row("database", cfg.DBPath())
			row("completion", cfg.Completion.Provider+" / "+cfg.Completion.Model)
			row("embedding", cfg.Embedding.Provider+" / "+cfg.Embedding.Model)
			row("memory limit", fmt.Sprint(cfg.Retrieval.MemoryLimit))
			row("reindex delay", cfg.ReindexDelay().String())
			row("credentials", string(cfg.CredentialStore.GetMethod()))
			keys := cfg.CredentialStore.Providers()
			if len(keys) == 0 {
				row("api keys", "none")
			} else {
				row("api keys", strings.Join(keys, ", "))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "template",
		Short: "Print the default user config template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateUserConfigTemplate())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-key <provider>",
		Short: "Store an API key read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "API key for %s: ", args[0])
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			key := strings.TrimSpace(line)
			if key == "" {
				return errors.New("no key given")
			}
			store := st.cfg.CredentialStore
			store.Set(args[0], key)
			if err := store.Save(st.cfg.DataDir()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored key for %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-key <provider>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := st.cfg.CredentialStore
			store.Delete(args[0])
			if err := store.Save(st.cfg.DataDir()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed key for %s\n", args[0])
			return nil
		},
	})

	return cmd
}
