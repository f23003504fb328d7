package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"pairpilot/model"
)

// DefaultScanDepth bounds the directory snapshot taken at index time.
const DefaultScanDepth = 5

// BuildTree walks root into a snapshot. Excluded directories below the root
// and directories deeper than maxDepth are recorded with an error and no
// children; an unreadable directory becomes an error node. Symlinks and
// other special files are left out.
func BuildTree(root string, maxDepth int) *model.DirectoryNode {
	return buildNode(root, maxDepth, 0)
}

func buildNode(dir string, maxDepth, depth int) *model.DirectoryNode {
	name := filepath.Base(dir)

	if depth > 0 && IsExcluded(name) {
		return &model.DirectoryNode{Name: name, Type: model.NodeDirectory, Children: []*model.DirectoryNode{}, Error: "Skipped (excluded)"}
	}
	if depth > maxDepth {
		return &model.DirectoryNode{Name: name, Type: model.NodeDirectory, Children: []*model.DirectoryNode{}, Error: fmt.Sprintf("Max depth (%d) reached", maxDepth)}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return &model.DirectoryNode{Name: name, Type: model.NodeError, Error: "Failed to read: " + ErrorText(err)}
	}
	sortEntries(entries)

	node := &model.DirectoryNode{Name: name, Type: model.NodeDirectory, Children: []*model.DirectoryNode{}}
	for _, entry := range entries {
		if IsExcluded(entry.Name()) {
			continue
		}
		switch {
		case entry.IsDir():
			node.Children = append(node.Children, buildNode(filepath.Join(dir, entry.Name()), maxDepth, depth+1))
		case entry.Type().IsRegular():
			node.Children = append(node.Children, &model.DirectoryNode{Name: entry.Name(), Type: model.NodeFile})
		}
	}
	return node
}
