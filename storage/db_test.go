package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "pairpilot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesSchema(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"projects", "insights"} {
		var name string
		err := db.conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairpilot.db")
	db, err := Open(path)
	require.NoError(t, err)
	_, err = NewProjectStore(db).Upsert(context.Background(), "a", "/tmp/a", "", time.Now())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	projects, err := NewProjectStore(db).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestTimeLayoutSortsLexically(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := formatTime(base)
	later := formatTime(base.Add(10 * time.Millisecond))
	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later))
	assert.True(t, parseTime(earlier).Equal(base))
	assert.True(t, parseTime("garbage").IsZero())
}
