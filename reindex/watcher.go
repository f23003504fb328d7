package reindex

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"pairpilot/model"
	"pairpilot/workspace"
)

// Watcher feeds filesystem changes under a project root into a Scheduler.
// Excluded directories are neither watched nor reported.
type Watcher struct {
	project   model.Project
	scheduler *Scheduler
	watcher   *fsnotify.Watcher
	logger    *zap.Logger
}

func NewWatcher(project model.Project, scheduler *Scheduler, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		project:   project,
		scheduler: scheduler,
		watcher:   fw,
		logger:    logger.Named("watch").With(zap.String("project", project.Name)),
	}
	if err := w.addTree(project.RootPath); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && workspace.IsExcluded(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

// relevant reports whether path lies outside every excluded directory and is
// not the notes file, which changes without altering the tree shape.
func (w *Watcher) relevant(path string) bool {
	rel, err := filepath.Rel(w.project.RootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	if rel == workspace.NotesFileName {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if workspace.IsExcluded(seg) {
			return false
		}
	}
	return true
}

// Close releases the watcher without running it. Run also closes it on return.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.logger.Info("watching project", zap.String("root", w.project.RootPath))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// Content writes do not change the tree; only structure events count.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.relevant(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Debug("cannot watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
		}
	}

	w.logger.Debug("structure changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	w.scheduler.Schedule(w.project)
}
