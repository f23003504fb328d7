package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pairpilot/model"
	"pairpilot/orchestrator"
	"pairpilot/tools"
)

type staticProjects []model.Project

func (s staticProjects) List(ctx context.Context) ([]model.Project, error) {
	return s, nil
}

func TestResolveProject(t *testing.T) {
	root := t.TempDir()
	projects := staticProjects{
		{ID: 1, Name: "billing-service", RootPath: filepath.Join(root, "billing-service")},
		{ID: 2, Name: "frontend", RootPath: filepath.Join(root, "frontend")},
		{ID: 12, Name: "infra", RootPath: filepath.Join(root, "infra")},
	}

	tests := []struct {
		name    string
		query   string
		wantID  int64
		wantErr string
	}{
		{name: "numeric id", query: "12", wantID: 12},
		{name: "root path", query: filepath.Join(root, "frontend"), wantID: 2},
		{name: "fuzzy name", query: "bill", wantID: 1},
		{name: "fuzzy subsequence", query: "frnt", wantID: 2},
		{name: "no match", query: "zzz", wantErr: `no project matches "zzz"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := resolveProject(context.Background(), projects, tt.query)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}

func TestResolveProjectWithoutProjects(t *testing.T) {
	_, err := resolveProject(context.Background(), staticProjects{}, "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pairpilot index")
}

func TestRenderMarkdownReducesLinks(t *testing.T) {
	out := renderMarkdown("See [the docs](https://example.com/docs) for details.", 80)
	assert.Contains(t, out, "https://example.com/docs")
	assert.NotContains(t, out, "[the docs]")
}

func TestTerminalWidth(t *testing.T) {
	t.Setenv("COLUMNS", "132")
	assert.Equal(t, 132, terminalWidth())

	t.Setenv("COLUMNS", "garbage")
	assert.Equal(t, defaultWidth, terminalWidth())

	t.Setenv("COLUMNS", "10")
	assert.Equal(t, defaultWidth, terminalWidth())
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"chat", "index", "projects", "memory", "sessions", "watch", "serve", "models", "config"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0a1b2c3d", shortID("0a1b2c3d-0000-4000-8000-000000000000"))
	assert.Equal(t, "abc", shortID("abc"))
}

// isolate points every config and data path into a temporary home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PAIRPILOT_DATA_DIR", filepath.Join(home, "data"))
	for _, key := range []string{"PAIRPILOT_PROVIDER", "PAIRPILOT_MODEL", "PAIRPILOT_EMBED_PROVIDER", "PAIRPILOT_EMBED_MODEL", "PAIRPILOT_DEBUG", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}
	return home
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	require.NoError(t, root.Execute(), "stderr: %s", errOut.String())
	return out.String()
}

func TestIndexThenListProjects(t *testing.T) {
	home := isolate(t)
	project := filepath.Join(home, "code", "demo")
	require.NoError(t, os.MkdirAll(filepath.Join(project, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "src", "main.go"), []byte("package main\n"), 0644))

	out := execute(t, "index", project)
	assert.Contains(t, out, "Indexed")
	assert.Contains(t, out, "demo")

	_, err := os.Stat(filepath.Join(project, "AIContext.md"))
	require.NoError(t, err)

	out = execute(t, "projects", "list")
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, project)

	out = execute(t, "projects", "find", "dmo")
	assert.Contains(t, out, project)
}

func TestChatWithoutProviderReportsConfiguration(t *testing.T) {
	isolate(t)

	out := execute(t, "chat", "hello")
	assert.Contains(t, out, orchestrator.MessageNotConfigured)

	out = execute(t, "sessions", "list")
	assert.Contains(t, out, "No saved sessions.")
}

type savedMemory struct {
	texts []string
}

func (m *savedMemory) Save(ctx context.Context, text string, source *int64) (int64, error) {
	m.texts = append(m.texts, text)
	return int64(len(m.texts)), nil
}

type scheduled struct {
	projects []model.Project
}

func (s *scheduled) Schedule(p model.Project) {
	s.projects = append(s.projects, p)
}

func callTool(t *testing.T, h func(context.Context, mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error), args map[string]any) string {
	t.Helper()
	var req mcptypes.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcptypes.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestToolHandlerDispatchesWithinProject(t *testing.T) {
	root := t.TempDir()
	project := &model.Project{ID: 3, Name: "demo", RootPath: root}
	mem := &savedMemory{}
	d := tools.NewDispatcher(tools.NewDefaultRegistry(mem, tools.Limits{}), t.TempDir(), zap.NewNop())
	re := &scheduled{}

	create := toolHandler(d, tools.CreateFile, project, re, zap.NewNop())
	got := callTool(t, create, map[string]any{"path": "docs/readme.md", "content": "# demo"})
	assert.Equal(t, `Successfully created file: "docs/readme.md"`, got)
	require.Len(t, re.projects, 1)
	assert.Equal(t, int64(3), re.projects[0].ID)

	data, err := os.ReadFile(filepath.Join(root, "docs", "readme.md"))
	require.NoError(t, err)
	assert.Equal(t, "# demo", string(data))

	read := toolHandler(d, tools.ReadFile, project, re, zap.NewNop())
	assert.Equal(t, "# demo", callTool(t, read, map[string]any{"path": "docs/readme.md"}))
	assert.Len(t, re.projects, 1)

	escape := callTool(t, read, map[string]any{"path": "../outside"})
	assert.True(t, strings.HasPrefix(escape, "Error: Access denied"))

	missing := callTool(t, read, nil)
	assert.True(t, strings.HasPrefix(missing, "Error:"))
}

func TestToolServerRegistersEveryTool(t *testing.T) {
	d := tools.NewDispatcher(tools.NewDefaultRegistry(&savedMemory{}, tools.Limits{}), t.TempDir(), zap.NewNop())
	s := newToolServer(d, nil, nil, zap.NewNop())
	require.NotNil(t, s)
	assert.Len(t, d.Tools(), 8)
}

type fakeWatcher struct {
	name   string
	closed int
}

func (w *fakeWatcher) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (w *fakeWatcher) Close() error {
	w.closed++
	return nil
}

func TestOpenWatchersClosesOpenedOnFailure(t *testing.T) {
	projects := []model.Project{{Name: "alpha"}, {Name: "beta"}, {Name: "gamma"}}
	var opened []*fakeWatcher
	open := func(p model.Project) (projectWatcher, error) {
		if p.Name == "gamma" {
			return nil, errors.New("too many open files")
		}
		w := &fakeWatcher{name: p.Name}
		opened = append(opened, w)
		return w, nil
	}

	watchers, err := openWatchers(projects, open)
	require.EqualError(t, err, "watch gamma: too many open files")
	assert.Nil(t, watchers)
	require.Len(t, opened, 2)
	for _, w := range opened {
		assert.Equal(t, 1, w.closed, w.name)
	}
}

func TestOpenWatchersKeepsAllOnSuccess(t *testing.T) {
	projects := []model.Project{{Name: "alpha"}, {Name: "beta"}}
	var opened []*fakeWatcher
	watchers, err := openWatchers(projects, func(p model.Project) (projectWatcher, error) {
		w := &fakeWatcher{name: p.Name}
		opened = append(opened, w)
		return w, nil
	})
	require.NoError(t, err)
	assert.Len(t, watchers, 2)
	for _, w := range opened {
		assert.Zero(t, w.closed)
	}
}
