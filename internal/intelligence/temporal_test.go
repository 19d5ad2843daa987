package intelligence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memcortex/internal/graph"
)

func TestMemoryEvolution_OrderAndAnnotation(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	base := testNow.AddDate(0, -3, 0)
	seedMemory(t, store, "v1", "u1", "auth", base, "sessions stored in cookies")
	seedMemory(t, store, "v2", "u1", "auth", base.AddDate(0, 1, 0), "switched to JWT tokens")
	seedMemory(t, store, "other", "u1", "deploy", base, "unrelated topic")
	seedEdge(t, store, graph.RelSupersedes, "v2", "v1")

	entries, err := engine.MemoryEvolution(ctx, "auth", nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "v1", entries[0].MemoryID)
	assert.Nil(t, entries[0].Superseded)

	assert.Equal(t, "v2", entries[1].MemoryID)
	require.NotNil(t, entries[1].Superseded)
	assert.Equal(t, "v1", entries[1].Superseded.ID)
	assert.Equal(t, "sessions stored in cookies", entries[1].Superseded.Text)
}

func TestMemoryEvolution_DateRangeInclusive(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC) }
	seedMemory(t, store, "early", "u1", "auth", day(1), "early")
	seedMemory(t, store, "mid", "u1", "auth", day(10), "mid")
	seedMemory(t, store, "edge", "u1", "auth", day(20), "on the boundary")
	seedMemory(t, store, "late", "u1", "auth", day(25), "late")

	start, end := day(10), day(20)
	entries, err := engine.MemoryEvolution(ctx, "auth", &start, &end)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "mid", entries[0].MemoryID)
	assert.Equal(t, "edge", entries[1].MemoryID)
}

func TestMemoryEvolution_UnknownTopic(t *testing.T) {
	engine, _ := newTestEngine()

	entries, err := engine.MemoryEvolution(context.Background(), "nothing", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSupersededMemories(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	base := testNow.AddDate(0, -2, 0)
	// m1 superseded by m2, m2 superseded by m3
	seedMemory(t, store, "m1", "u1", "auth", base, "oldest")
	seedMemory(t, store, "m2", "u1", "auth", base.AddDate(0, 1, 0), "middle")
	seedMemory(t, store, "m3", "u1", "auth", base.AddDate(0, 2, 0), "newest")
	seedMemory(t, store, "stranger", "u2", "auth", base, "other user")
	seedEdge(t, store, graph.RelSupersedes, "m2", "m1")
	seedEdge(t, store, graph.RelSupersedes, "m3", "m2")

	pairs, err := engine.SupersededMemories(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	// Most recent supersession first
	assert.Equal(t, "m2", pairs[0].ObsoleteMemory.ID)
	assert.Equal(t, "m3", pairs[0].CurrentMemory.ID)
	assert.Equal(t, "m1", pairs[1].ObsoleteMemory.ID)
	assert.Equal(t, "m2", pairs[1].CurrentMemory.ID)
}

func TestSupersededMemories_NoneForUser(t *testing.T) {
	engine, store := newTestEngine()

	seedMemory(t, store, "m1", "u1", "", testNow, "standalone")

	pairs, err := engine.SupersededMemories(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}
