package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairpilot/embedding"
	"pairpilot/embedding/testutil"
)

func newFake() *testutil.FakeEngine {
	return testutil.NewFakeEngine()
}

// steppedClock returns strictly increasing timestamps.
func steppedClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestInsightSaveRejectsEmptyText(t *testing.T) {
	fake := newFake()
	store := NewInsightStore(openTestDB(t), fake, nil)

	_, err := store.Save(context.Background(), "   \n ", nil)
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Empty(t, fake.Calls())
}

func TestInsightSaveEmbeddingFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	fake.Err = errors.New("service down")
	store := NewInsightStore(openTestDB(t), fake, nil)

	_, err := store.Save(ctx, "something", nil)
	require.Error(t, err)

	records, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInsightRecallPrefersRelatedText(t *testing.T) {
	ctx := context.Background()
	store := NewInsightStore(openTestDB(t), newFake(), nil)
	store.now = steppedClock()

	_, err := store.Save(ctx, "user prefers TypeScript", nil)
	require.NoError(t, err)
	_, err = store.Save(ctx, "the deploy script runs nightly", nil)
	require.NoError(t, err)

	results, err := store.FindRelevant(ctx, "what language do I prefer?", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "user prefers TypeScript", results[0].Text)
	assert.Greater(t, results[0].Similarity, 0.0)
}

func TestInsightRecallOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	fake.Fixed = map[string][]float32{
		"query": {1, 0, 0},
		"exact": {1, 0, 0},
		"close": {1, 1, 0},
		"far":   {0, 0, 1},
		"tie-a": {1, 1, 0},
	}
	store := NewInsightStore(openTestDB(t), fake, nil)
	store.now = steppedClock()

	for _, text := range []string{"far", "close", "exact", "tie-a"} {
		_, err := store.Save(ctx, text, nil)
		require.NoError(t, err)
	}

	results, err := store.FindRelevant(ctx, "query", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Equal scores keep newest-first order.
	assert.Equal(t, []string{"exact", "tie-a", "close"},
		[]string{results[0].Text, results[1].Text, results[2].Text})
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestInsightRecallSkipsMismatchedAndZeroVectors(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	fake.Fixed = map[string][]float32{
		"query":    {1, 0, 0},
		"ok":       {0.5, 0.5, 0},
		"short":    {1, 0},
		"zero":     {0, 0, 0},
		"fourdims": {1, 0, 0, 0},
	}
	store := NewInsightStore(openTestDB(t), fake, nil)

	for _, text := range []string{"ok", "short", "zero", "fourdims"} {
		_, err := store.Save(ctx, text, nil)
		require.NoError(t, err)
	}

	results, err := store.FindRelevant(ctx, "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Text)
}

func TestInsightRecallSkipsCorruptBlob(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	fake := newFake()
	fake.Fixed = map[string][]float32{"query": {1, 0}, "good": {1, 0}}
	store := NewInsightStore(db, fake, nil)

	_, err := store.Save(ctx, "good", nil)
	require.NoError(t, err)
	_, err = db.conn.Exec(`INSERT INTO insights (text, embedding, created_at) VALUES (?, ?, ?)`,
		"broken", []byte{1, 2, 3}, formatTime(time.Now()))
	require.NoError(t, err)

	results, err := store.FindRelevant(ctx, "query", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Text)
}

func TestInsightRecallEmbeddingFailureIsEmpty(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	store := NewInsightStore(openTestDB(t), fake, nil)
	_, err := store.Save(ctx, "remember me", nil)
	require.NoError(t, err)

	fake.Err = errors.New("timeout")
	results, err := store.FindRelevant(ctx, "remember", 3)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestInsightRecallEmptyStore(t *testing.T) {
	store := NewInsightStore(openTestDB(t), newFake(), nil)
	results, err := store.FindRelevant(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInsightStoredVectorIsLittleEndianFloat32(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	fake := newFake()
	fake.Fixed = map[string][]float32{"vec": {0.25, -1.5, 3}}
	store := NewInsightStore(db, fake, nil)

	id, err := store.Save(ctx, "vec", nil)
	require.NoError(t, err)

	var blob []byte
	require.NoError(t, db.conn.QueryRow(`SELECT embedding FROM insights WHERE id = ?`, id).Scan(&blob))
	assert.Len(t, blob, 12)
	vec, err := embedding.DecodeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -1.5, 3}, vec)
}

func TestInsightListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewInsightStore(openTestDB(t), newFake(), nil)
	store.now = steppedClock()

	for _, text := range []string{"one", "two", "three"} {
		_, err := store.Save(ctx, text, nil)
		require.NoError(t, err)
	}

	records, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "three", records[0].Text)
	assert.Equal(t, "two", records[1].Text)
	assert.False(t, records[0].Timestamp.IsZero())
}
