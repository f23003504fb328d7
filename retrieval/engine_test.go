package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"pairpilot/model"
)

type stubRecaller struct {
	results []model.ScoredInsight
	err     error
	limit   int
}

func (s *stubRecaller) FindRelevant(ctx context.Context, query string, limit int) ([]model.ScoredInsight, error) {
	s.limit = limit
	return s.results, s.err
}

func sampleTree() *model.DirectoryNode {
	return &model.DirectoryNode{Name: "demo", Type: model.NodeDirectory, Children: []*model.DirectoryNode{
		{Name: "README.md", Type: model.NodeFile},
		{Name: "node_modules", Type: model.NodeDirectory, Error: "Skipped (excluded)"},
		{Name: "src", Type: model.NodeDirectory, Children: []*model.DirectoryNode{
			{Name: "a.ts", Type: model.NodeFile},
			{Name: "b", Type: model.NodeDirectory},
		}},
		{Name: "empty", Type: model.NodeDirectory},
	}}
}

func TestLastPathMention(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"what's in src/?", "src"},
		{"open src/components/App.tsx please", "please"},
		{"look at src/components/App.tsx", "src/components/App.tsx"},
		{"?", ""},
		{"a", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LastPathMention(tt.msg), tt.msg)
	}
}

func TestFindNode(t *testing.T) {
	tree := sampleTree()
	tests := []struct {
		path string
		want string
	}{
		{"src", "src"},
		{"SRC/A.TS", "a.ts"},
		{`src\b`, "b"},
		{"./src/./a.ts", "a.ts"},
		{"", "demo"},
		{".", "demo"},
		{"demo", ""},
		{"src/a.ts/x", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		got := FindNode(tree, tt.path)
		if tt.want == "" {
			assert.Nil(t, got, tt.path)
			continue
		}
		if assert.NotNil(t, got, tt.path) {
			assert.Equal(t, tt.want, got.Name, tt.path)
		}
	}
	assert.Nil(t, FindNode(nil, "src"))
}

func TestRetrieveStructureSnippet(t *testing.T) {
	project := &model.Project{ID: 1, Name: "demo", RootPath: "/work/demo"}
	e := NewEngine(nil, 0, nil)

	tests := []struct {
		msg  string
		want string
	}{
		{"what's in src/?", "\n\nRelevant context for \"src\" in project 'demo':\nThis directory contains: [a.ts, b/]"},
		{"explain src/a.ts", "\n\nRelevant context for \"src/a.ts\" in project 'demo':\nThis is a file. Use 'read_file' tool to see content."},
		{"check node_modules", "\n\nRelevant context for \"node_modules\" in project 'demo':\nError accessing this item: Skipped (excluded)"},
		{"what about empty", "\n\nRelevant context for \"empty\" in project 'demo':\nThis directory appears to be empty or contains only excluded items."},
		{"hello there", ""},
	}
	for _, tt := range tests {
		got := e.Retrieve(context.Background(), tt.msg, project, sampleTree())
		assert.Equal(t, tt.want, got.StructureSnippet, tt.msg)
		assert.Empty(t, got.MemorySnippet)
	}
}

func TestRetrieveNeedsProjectAndTree(t *testing.T) {
	e := NewEngine(nil, 0, nil)
	assert.Empty(t, e.Retrieve(context.Background(), "src", nil, sampleTree()).StructureSnippet)
	assert.Empty(t, e.Retrieve(context.Background(), "src", &model.Project{Name: "demo"}, nil).StructureSnippet)
}

func TestRetrieveMemorySnippet(t *testing.T) {
	recall := &stubRecaller{results: []model.ScoredInsight{
		{Text: "user prefers TypeScript", Similarity: 0.91234},
		{Text: "deploys on Fridays", Similarity: 0.5},
	}}
	e := NewEngine(recall, 0, nil)

	got := e.Retrieve(context.Background(), "what language do I prefer?", nil, nil)
	want := "\n\nPossibly relevant information from past interactions:" +
		"\n- user prefers TypeScript (Similarity: 0.912)" +
		"\n- deploys on Fridays (Similarity: 0.500)"
	assert.Equal(t, want, got.MemorySnippet)
	assert.Equal(t, DefaultMemoryLimit, recall.limit)
}

func TestRetrieveMemoryFailureDegrades(t *testing.T) {
	e := NewEngine(&stubRecaller{err: errors.New("db locked")}, 3, nil)
	got := e.Retrieve(context.Background(), "anything", nil, nil)
	assert.Empty(t, got.MemorySnippet)
}

func TestRetrieveEmptyMessage(t *testing.T) {
	recall := &stubRecaller{results: []model.ScoredInsight{{Text: "x", Similarity: 1}}}
	got := NewEngine(recall, 3, nil).Retrieve(context.Background(), "   ", &model.Project{}, sampleTree())
	assert.Equal(t, model.RetrievalResult{}, got)
	assert.Zero(t, recall.limit)
}
