package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultTreeChars is the output budget of RenderTextTree.
const DefaultTreeChars = 20000

const truncationMarker = "[... Output truncated due to size]"

// RenderTextTree lists dir as an indented text tree, two spaces per level.
// Output stops at the first child that would push it past maxChars and a
// truncation marker is written in its place.
func RenderTextTree(dir string, maxDepth, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultTreeChars
	}
	return renderDir(dir, maxDepth, maxChars, 0, "")
}

func renderDir(dir string, maxDepth, maxChars, depth int, indent string) string {
	name := filepath.Base(dir)

	if depth > 0 && IsExcluded(name) {
		return indent + name + "/ [Excluded]\n"
	}
	if depth > maxDepth {
		return indent + name + "/ [... Max depth reached]\n"
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return indent + name + "/ [Error: " + ErrorText(err) + "]\n"
	}
	sortEntries(entries)

	header := indent + name + "/\n"
	childIndent := indent + "  "

	visible := 0
	for _, entry := range entries {
		if !IsExcluded(entry.Name()) {
			visible++
		}
	}
	if visible == 0 {
		if depth > 0 {
			return indent + name + "/ [Empty]\n"
		}
		return header + childIndent + "[Empty]\n"
	}

	var children strings.Builder
	for _, entry := range entries {
		if IsExcluded(entry.Name()) {
			continue
		}

		var child string
		switch {
		case entry.IsDir():
			child = renderDir(filepath.Join(dir, entry.Name()), maxDepth, maxChars, depth+1, childIndent)
		case entry.Type().IsRegular():
			child = childIndent + entry.Name() + "\n"
		default:
			continue
		}

		if len(header)+children.Len()+len(child) > maxChars {
			children.WriteString(childIndent + truncationMarker + "\n")
			break
		}
		children.WriteString(child)
	}
	return header + children.String()
}
