// Package appctx loads the project context a chat turn starts from.
package appctx

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pairpilot/model"
	"pairpilot/workspace"
)

// ProjectLister lists indexed projects with their snapshots.
type ProjectLister interface {
	List(ctx context.Context) ([]model.Project, error)
}

// Result is the loaded context. Summary is the project sentence set for the
// system prompt; problems found while loading are in Diagnostics and never
// abort the turn.
type Result struct {
	Summary       string
	ActiveProject *model.Project
	Tree          *model.DirectoryNode
	Diagnostics   model.Diagnostics
}

// SummaryText is the summary followed by every diagnostic message.
func (r Result) SummaryText() string {
	return r.Summary + r.Diagnostics.Text()
}

type Loader struct {
	projects ProjectLister
	logger   *zap.Logger
}

func NewLoader(projects ProjectLister, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{projects: projects, logger: logger.Named("context")}
}

// Load builds the context for activeProjectID, which may be nil.
func (l *Loader) Load(ctx context.Context, activeProjectID *int64) Result {
	var res Result

	projects, err := l.projects.List(ctx)
	if err != nil {
		l.logger.Warn("failed to load indexed projects", zap.Error(err))
		res.Diagnostics.Warn("Error: Could not load indexed projects list.")
		return res
	}
	if len(projects) == 0 {
		res.Summary = " The user has not indexed any projects yet."
		return res
	}

	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	res.Summary = fmt.Sprintf(" The user has indexed the following projects: [%s].", strings.Join(names, ", "))

	if activeProjectID == nil {
		res.Summary += " No specific project context is active."
		return res
	}

	var active *model.Project
	for i := range projects {
		if projects[i].ID == *activeProjectID {
			active = &projects[i]
			break
		}
	}
	if active == nil {
		l.logger.Warn("active project not found", zap.Int64("project_id", *activeProjectID))
		res.Diagnostics.Warn("An invalid project context was requested.")
		return res
	}
	res.ActiveProject = active

	if active.RootPath == "" {
		res.Diagnostics.Warn(fmt.Sprintf("Warning: Root path not found for active project '%s'.", active.Name))
	} else {
		res.Summary += fmt.Sprintf(" The currently active project is '%s' located at path '%s'.", active.Name, active.RootPath)
	}

	if active.StructureSnapshot == "" {
		l.logger.Warn("no structure snapshot", zap.Int64("project_id", active.ID))
		res.Diagnostics.Warn(fmt.Sprintf("Warning: File structure details not found for active project '%s'. Re-index might be needed.", active.Name))
		return res
	}

	tree, err := workspace.ParseSnapshot(active.StructureSnapshot)
	if err != nil {
		l.logger.Warn("corrupt structure snapshot", zap.Int64("project_id", active.ID), zap.Error(err))
		res.Diagnostics.Warn(fmt.Sprintf("Warning: Stored file structure for '%s' appears corrupted.", active.Name))
		return res
	}
	res.Tree = tree
	return res
}
