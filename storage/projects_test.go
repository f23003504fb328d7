package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewProjectStore(openTestDB(t))
	indexed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	p, err := store.Upsert(ctx, "alpha", "/work/alpha", `{"name":"alpha"}`, indexed)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "alpha", p.Name)
	assert.Equal(t, "/work/alpha", p.RootPath)
	assert.Equal(t, `{"name":"alpha"}`, p.StructureSnapshot)
	assert.True(t, p.LastIndexed.Equal(indexed))

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestProjectUpsertRefreshesExistingRoot(t *testing.T) {
	ctx := context.Background()
	store := NewProjectStore(openTestDB(t))

	first, err := store.Upsert(ctx, "alpha", "/work/alpha", "v1", time.Now())
	require.NoError(t, err)
	second, err := store.Upsert(ctx, "alpha", "/work/alpha", "v2", time.Now())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "v2", second.StructureSnapshot)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProjectListOrderedByName(t *testing.T) {
	ctx := context.Background()
	store := NewProjectStore(openTestDB(t))
	for _, name := range []string{"zeta", "Alpha", "mid"} {
		_, err := store.Upsert(ctx, name, "/work/"+name, "", time.Now())
		require.NoError(t, err)
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, p := range all {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Alpha", "mid", "zeta"}, names)
}

func TestProjectNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewProjectStore(openTestDB(t))

	_, err := store.Get(ctx, 42)
	assert.True(t, errors.Is(err, ErrProjectNotFound))

	_, err = store.GetByRoot(ctx, "/nowhere")
	assert.ErrorIs(t, err, ErrProjectNotFound)

	assert.ErrorIs(t, store.Delete(ctx, 42), ErrProjectNotFound)
}

func TestProjectDeleteKeepsInsights(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	projects := NewProjectStore(db)
	insights := NewInsightStore(db, newFake(), nil)

	p, err := projects.Upsert(ctx, "alpha", "/work/alpha", "", time.Now())
	require.NoError(t, err)
	_, err = insights.Save(ctx, "alpha uses sqlite", &p.ID)
	require.NoError(t, err)

	require.NoError(t, projects.Delete(ctx, p.ID))

	records, err := insights.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].SourceProjectID)
}
