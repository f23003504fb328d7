package cli

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"pairpilot/storage"
)

func newSessionsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage saved chat sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := storage.NewSessionStorage(st.cfg.DataDir())
			if err != nil {
				return err
			}
			list, err := sessions.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("No saved sessions."))
				return nil
			}
			current, _ := sessions.LoadCurrentSessionID()
			for _, s := range list {
				marker := "  "
				if s.ID == current {
					marker = HighlightStyle.Render("* ")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s %s %s\n",
					marker,
					DimStyle.Render(shortID(s.ID)),
					runewidth.FillRight(runewidth.Truncate(s.Name, 34, "..."), 34),
					DimStyle.Render(fmt.Sprintf("%d messages, %s", s.MessageCount, s.UpdatedAt.Local().Format("Jan 2 15:04"))))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search user and assistant messages across sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := storage.NewSessionStorage(st.cfg.DataDir())
			if err != nil {
				return err
			}
			matches, err := storage.NewSearchIndex(sessions).SearchAllSessions(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("No matches."))
				return nil
			}
			for _, m := range matches {
				role := AssistantStyle.Render(m.Role)
				if m.Role == "user" {
					role = UserStyle.Render(m.Role)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s #%d %s: %s\n",
					DimStyle.Render(shortID(m.SessionID)), m.SessionName, m.MessageIndex, role, m.Preview)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id-prefix>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := storage.NewSessionStorage(st.cfg.DataDir())
			if err != nil {
				return err
			}
			id, err := findSessionID(sessions, args[0])
			if err != nil {
				return err
			}
			if err := sessions.Delete(id); err != nil {
				return err
			}
			if current, _ := sessions.LoadCurrentSessionID(); current == id {
				_ = sessions.SaveCurrentSessionID("")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", shortID(id))
			return nil
		},
	})

	return cmd
}

// findSessionID expands a unique ID prefix to a full session ID.
func findSessionID(sessions *storage.SessionStorage, prefix string) (string, error) {
	list, err := sessions.List()
	if err != nil {
		return "", err
	}
	var found []string
	for _, s := range list {
		if strings.HasPrefix(s.ID, prefix) {
			found = append(found, s.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no session with id %q", prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("session id %q is ambiguous (%d matches)", prefix, len(found))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
