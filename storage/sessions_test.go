package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairpilot/model"
)

func TestSessionSaveLoadRoundTrip(t *testing.T) {
	ss, err := NewSessionStorage(t.TempDir())
	require.NoError(t, err)

	pid := int64(7)
	session := &Session{Name: "demo", Model: "gpt-4.1", ProjectID: &pid}
	session.SetMessages([]model.Message{
		{Role: model.RoleSystem, Content: "system prompt"},
		{Role: model.RoleUser, Content: "list files"},
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{ID: "c1", Name: "list_directory", Arguments: `{"path":"."}`}}},
		{Role: model.RoleTool, ToolCallID: "c1", Content: "main.go"},
		{Role: model.RoleAssistant, Content: "There is one file."},
	})
	require.NoError(t, ss.Save(session))
	require.NotEmpty(t, session.ID)

	loaded, err := ss.Load(session.ID)
	require.NoError(t, err)

	want := []model.Message{
		{Role: model.RoleUser, Content: "list files"},
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{ID: "c1", Name: "list_directory", Arguments: `{"path":"."}`}}},
		{Role: model.RoleTool, ToolCallID: "c1", Content: "main.go"},
		{Role: model.RoleAssistant, Content: "There is one file."},
	}
	if diff := cmp.Diff(want, loaded.ModelMessages(), cmpopts.IgnoreFields(model.Message{}, "Timestamp")); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, loaded.ProjectID)
	assert.Equal(t, pid, *loaded.ProjectID)
}

func TestSessionLoadRejectsBadID(t *testing.T) {
	ss, err := NewSessionStorage(t.TempDir())
	require.NoError(t, err)
	_, err = ss.Load("../../etc/passwd")
	assert.Error(t, err)
}

func TestSessionListAndDelete(t *testing.T) {
	ss, err := NewSessionStorage(t.TempDir())
	require.NoError(t, err)

	a := &Session{Name: "a"}
	b := &Session{Name: "b"}
	require.NoError(t, ss.Save(a))
	require.NoError(t, ss.Save(b))

	list, err := ss.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Name)

	require.NoError(t, ss.Delete(a.ID))
	list, err = ss.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCurrentSessionID(t *testing.T) {
	ss, err := NewSessionStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ss.LoadCurrentSessionID()
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, ss.SaveCurrentSessionID("abc"))
	id, err := ss.LoadCurrentSessionID()
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestGenerateSessionName(t *testing.T) {
	assert.Equal(t, "hello world", GenerateSessionName("  hello\nworld "))
	long := GenerateSessionName(strings.Repeat("x", 50))
	assert.Equal(t, strings.Repeat("x", 30)+"...", long)
	assert.True(t, strings.HasPrefix(GenerateSessionName(""), "Session "))
}

func TestSearchAllSessions(t *testing.T) {
	ss, err := NewSessionStorage(t.TempDir())
	require.NoError(t, err)

	s := &Session{Name: "search"}
	s.SetMessages([]model.Message{
		{Role: model.RoleUser, Content: "How do I configure SQLite?"},
		{Role: model.RoleTool, ToolCallID: "x", Content: "sqlite appears here too"},
		{Role: model.RoleAssistant, Content: "Set the sqlite pragma."},
	})
	require.NoError(t, ss.Save(s))

	matches, err := NewSearchIndex(ss).SearchAllSessions("SQLITE")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].MessageIndex)
	assert.Equal(t, 2, matches[1].MessageIndex)

	none, err := NewSearchIndex(ss).SearchAllSessions("  ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPreviewTruncatesByDisplayWidth(t *testing.T) {
	assert.Equal(t, "a b c", Preview("a\n b\t c", 20))
	got := Preview(strings.Repeat("界", 10), 8)
	assert.Equal(t, "界界...", got)
}

func TestInstanceLock(t *testing.T) {
	dir := t.TempDir()
	lock := NewInstanceLock(dir)

	locked, _, err := lock.Check()
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, lock.Acquire())
	// Our own PID never counts as a competing holder.
	locked, pid, err := lock.Check()
	require.NoError(t, err)
	assert.False(t, locked)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())
}
