package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"pairpilot/model"
)

// ProjectUpserter is the storage the indexer writes snapshots to.
type ProjectUpserter interface {
	Upsert(ctx context.Context, name, rootPath, snapshot string, indexedAt time.Time) (*model.Project, error)
}

// Indexer scans a project root and persists its snapshot.
type Indexer struct {
	projects ProjectUpserter
	maxDepth int
	logger   *zap.Logger
	now      func() time.Time
}

func NewIndexer(projects ProjectUpserter, maxDepth int, logger *zap.Logger) *Indexer {
	if maxDepth <= 0 {
		maxDepth = DefaultScanDepth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		projects: projects,
		maxDepth: maxDepth,
		logger:   logger.Named("indexer"),
		now:      time.Now,
	}
}

// Index snapshots rootPath and upserts the project keyed on its absolute
// path. The notes file is created if missing; failing to create it is logged
// and does not fail the index.
func (ix *Indexer) Index(ctx context.Context, rootPath string) (*model.Project, error) {
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("invalid project path %q: %w", rootPath, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot index %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot index %s: not a directory", root)
	}

	start := ix.now()
	tree := BuildTree(root, ix.maxDepth)
	snapshot, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize structure: %w", err)
	}

	name := filepath.Base(root)
	project, err := ix.projects.Upsert(ctx, name, root, string(snapshot), ix.now())
	if err != nil {
		return nil, err
	}

	if created, err := EnsureNotes(root, name); err != nil {
		ix.logger.Warn("notes file unavailable", zap.String("root", root), zap.Error(err))
	} else if created {
		ix.logger.Info("created notes file", zap.String("path", NotesPath(root)))
	}

	ix.logger.Info("project indexed",
		zap.Int64("project_id", project.ID),
		zap.String("root", root),
		zap.Int("snapshot_bytes", len(snapshot)),
		zap.Duration("took", ix.now().Sub(start)))
	return project, nil
}

// ParseSnapshot decodes a stored snapshot.
func ParseSnapshot(snapshot string) (*model.DirectoryNode, error) {
	var tree model.DirectoryNode
	if err := json.Unmarshal([]byte(snapshot), &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}
