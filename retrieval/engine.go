// Package retrieval builds the per-turn structure and memory snippets.
package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"pairpilot/model"
)

// DefaultMemoryLimit is how many insights are recalled per turn.
const DefaultMemoryLimit = 3

var pathPattern = regexp.MustCompile(`([\w.-]+/)*[\w.-]+\.?\w+`)

// Recaller ranks stored insights against a query.
type Recaller interface {
	FindRelevant(ctx context.Context, query string, limit int) ([]model.ScoredInsight, error)
}

// Engine combines a structure lookup in the active project's snapshot with
// memory recall. Neither part can fail a turn: problems are logged and the
// affected snippet is left empty.
type Engine struct {
	memory      Recaller
	memoryLimit int
	logger      *zap.Logger
}

func NewEngine(memory Recaller, memoryLimit int, logger *zap.Logger) *Engine {
	if memoryLimit <= 0 {
		memoryLimit = DefaultMemoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{memory: memory, memoryLimit: memoryLimit, logger: logger.Named("retrieval")}
}

// Retrieve builds both snippets for the latest user message.
func (e *Engine) Retrieve(ctx context.Context, lastUserMessage string, project *model.Project, tree *model.DirectoryNode) model.RetrievalResult {
	var result model.RetrievalResult
	if strings.TrimSpace(lastUserMessage) == "" {
		return result
	}
	if project != nil && tree != nil {
		result.StructureSnippet = e.structureSnippet(lastUserMessage, project, tree)
	}
	result.MemorySnippet = e.memorySnippet(ctx, lastUserMessage)
	return result
}

func (e *Engine) structureSnippet(message string, project *model.Project, tree *model.DirectoryNode) string {
	target := LastPathMention(message)
	if target == "" {
		return ""
	}

	node := FindNode(tree, target)
	if node == nil {
		e.logger.Debug("mentioned path not in stored tree", zap.String("path", target))
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n\nRelevant context for %q in project '%s':", target, project.Name)
	switch {
	case node.Error != "":
		sb.WriteString("\nError accessing this item: " + node.Error)
	case node.Type == model.NodeDirectory:
		if len(node.Children) == 0 {
			sb.WriteString("\nThis directory appears to be empty or contains only excluded items.")
			break
		}
		names := make([]string, len(node.Children))
		for i, c := range node.Children {
			names[i] = c.Name
			if c.IsDir() {
				names[i] += "/"
			}
		}
		sb.WriteString("\nThis directory contains: [" + strings.Join(names, ", ") + "]")
	case node.Type == model.NodeFile:
		sb.WriteString("\nThis is a file. Use 'read_file' tool to see content.")
	}
	return sb.String()
}

func (e *Engine) memorySnippet(ctx context.Context, query string) string {
	if e.memory == nil {
		return ""
	}
	insights, err := e.memory.FindRelevant(ctx, query, e.memoryLimit)
	if err != nil {
		e.logger.Warn("memory recall failed", zap.Error(err))
		return ""
	}
	if len(insights) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\nPossibly relevant information from past interactions:")
	for _, in := range insights {
		fmt.Fprintf(&sb, "\n- %s (Similarity: %.3f)", in.Text, in.Similarity)
	}
	return sb.String()
}

// LastPathMention returns the last path-like token in message, or "".
func LastPathMention(message string) string {
	matches := pathPattern.FindAllString(message, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1]
}

// FindNode walks tree segment by segment, comparing names case-insensitively.
// A path with no segments, such as "" or ".", selects the root.
func FindNode(tree *model.DirectoryNode, relPath string) *model.DirectoryNode {
	if tree == nil {
		return nil
	}
	parts := strings.FieldsFunc(relPath, func(r rune) bool { return r == '/' || r == '\\' })
	segments := parts[:0]
	for _, p := range parts {
		if p != "." {
			segments = append(segments, p)
		}
	}
	if len(segments) == 0 {
		if relPath == "" || relPath == "." || relPath == tree.Name {
			return tree
		}
		return nil
	}

	node := tree
	for _, seg := range segments {
		if !node.IsDir() {
			return nil
		}
		var next *model.DirectoryNode
		for _, child := range node.Children {
			if strings.EqualFold(child.Name, seg) {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}
