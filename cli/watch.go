package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pairpilot/model"
	"pairpilot/reindex"
)

func newWatchCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [project...]",
		Short: "Re-index projects when their directory structure changes",
		Long: `Watch project roots and refresh their structure snapshots after files or
directories are created, removed or renamed. All indexed projects are watched
when none are named. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.open(appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			projects, err := watchTargets(ctx, a, args)
			if err != nil {
				return err
			}

			watchers, err := openWatchers(projects, func(p model.Project) (projectWatcher, error) {
				return reindex.NewWatcher(p, a.scheduler, a.logger)
			})
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", DimStyle.Render("watching"), HighlightStyle.Render(p.Name))
			}

			g, ctx := errgroup.WithContext(ctx)
			for _, w := range watchers {
				g.Go(func() error {
					return w.Run(ctx)
				})
			}
			return g.Wait()
		},
	}
}

type projectWatcher interface {
	Run(ctx context.Context) error
	Close() error
}

// openWatchers opens one watcher per project. When one fails, those already
// opened are closed before the error is returned.
func openWatchers(projects []model.Project, open func(model.Project) (projectWatcher, error)) ([]projectWatcher, error) {
	watchers := make([]projectWatcher, 0, len(projects))
	for _, p := range projects {
		w, err := open(p)
		if err != nil {
			for _, opened := range watchers {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("watch %s: %w", p.Name, err)
		}
		watchers = append(watchers, w)
	}
	return watchers, nil
}

func watchTargets(ctx context.Context, a *app, args []string) ([]model.Project, error) {
	if len(args) == 0 {
		all, err := a.projects.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, fmt.Errorf("no indexed projects to watch")
		}
		return all, nil
	}
	out := make([]model.Project, 0, len(args))
	for _, q := range args {
		p, err := resolveProject(ctx, a.projects, q)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}
