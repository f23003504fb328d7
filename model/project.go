package model

import "time"

// Project is an indexed directory. RootPath is the sandbox root for every
// path based tool while the project is active.
type Project struct {
	ID                int64
	Name              string
	RootPath          string
	LastIndexed       time.Time
	StructureSnapshot string // serialized DirectoryNode tree
}

// Node types in a directory snapshot.
const (
	NodeFile      = "file"
	NodeDirectory = "directory"
	NodeError     = "error"
)

// DirectoryNode is one entry of a directory snapshot taken at index time.
// Snapshots go stale and are refreshed only by re-indexing.
type DirectoryNode struct {
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	Children []*DirectoryNode `json:"children,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *DirectoryNode) IsDir() bool {
	return n != nil && n.Type == NodeDirectory
}
