package intelligence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memcortex/internal/graph"
)

func TestAnalyzeMemoryIntelligence_EmptyGraph(t *testing.T) {
	engine, _ := newTestEngine()

	report, err := engine.AnalyzeMemoryIntelligence(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Equal(t, 0, report.Summary.TotalMemories)
	assert.Equal(t, 0.0, report.Summary.AvgConnections)
	assert.Equal(t, 0, report.Summary.IsolatedMemories)
	assert.Equal(t, 0.0, report.Summary.KnowledgeHealthScore)
	assert.Empty(t, report.Insights.CentralMemories)
	assert.Contains(t, report.Recommendations,
		"Knowledge graph health is low - consider adding more connections between related memories")
}

func TestAnalyzeMemoryIntelligence_HealthyPair(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	seedMemory(t, store, "m1", "u1", "auth", testNow, "one")
	seedMemory(t, store, "m2", "u1", "auth", testNow, "two")
	seedEdge(t, store, graph.RelRelatesTo, "m1", "m2")

	report, err := engine.AnalyzeMemoryIntelligence(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.TotalMemories)
	assert.Equal(t, 1.0, report.Summary.AvgConnections)
	assert.Equal(t, 0, report.Summary.IsolatedMemories)
	assert.Equal(t, 10.0, report.Summary.KnowledgeHealthScore)
	assert.Equal(t, []string{"Memory graph is healthy! Continue building interconnected knowledge"},
		report.Recommendations)
}

func TestAnalyzeMemoryIntelligence_IsolationAndObsolescence(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	seedMemory(t, store, "old", "u1", "auth", testNow.AddDate(0, -1, 0), "stale")
	seedMemory(t, store, "new", "u1", "auth", testNow, "current")
	seedMemory(t, store, "island", "u1", "", testNow, "unlinked")
	seedEdge(t, store, graph.RelSupersedes, "new", "old")

	report, err := engine.AnalyzeMemoryIntelligence(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.TotalMemories)
	assert.Equal(t, 1, report.Summary.IsolatedMemories)
	assert.Equal(t, 1, report.Summary.ObsoleteMemories)
	// (2/3)*10 - (1/3)*100 - (1/3)*50 clamps to zero
	assert.Equal(t, 0.0, report.Summary.KnowledgeHealthScore)
}

func TestAnalyzeMemoryIntelligence_ConflictsAndClusters(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	seedMemory(t, store, "a1", "u1", "auth", testNow, "use sessions")
	seedMemory(t, store, "a2", "u1", "auth", testNow, "use JWT")
	seedMemory(t, store, "d1", "u1", "deploy", testNow, "deploy fridays")
	seedMemory(t, store, "d2", "u1", "", testNow, "never deploy fridays")
	seedEdge(t, store, graph.RelConflictsWith, "a1", "a2")
	seedEdge(t, store, graph.RelConflictsWith, "d1", "d2")
	seedEdge(t, store, graph.RelRelatesTo, "a1", "d1")

	report, err := engine.AnalyzeMemoryIntelligence(ctx, "u1")
	require.NoError(t, err)

	// auth accrues conflicts from both endpoints of a1-a2; deploy from d1,
	// the untopiced d2 counts under the empty topic
	require.NotEmpty(t, report.Insights.ConflictingKnowledge)
	assert.Equal(t, "auth", report.Insights.ConflictingKnowledge[0].Topic)
	assert.Equal(t, 2, report.Insights.ConflictingKnowledge[0].Count)

	assert.Equal(t, 2, report.Insights.KnowledgeClusters["auth"])
	assert.Equal(t, 1, report.Insights.KnowledgeClusters["deploy"])
	assert.Equal(t, 1, report.Insights.KnowledgeClusters[uncategorizedTopic])

	assert.Contains(t, report.Recommendations,
		"Resolve 3 conflicting topics to maintain knowledge consistency")
}

func TestAnalyzeMemoryIntelligence_CentralMemoriesRanked(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	seedMemory(t, store, "hub", "u1", "core", testNow, "hub")
	for _, id := range []string{"s1", "s2", "s3"} {
		seedMemory(t, store, id, "u1", "core", testNow, id)
		seedEdge(t, store, graph.RelRelatesTo, "hub", id)
	}
	seedMemory(t, store, "loner", "u1", "core", testNow, "loner")

	report, err := engine.AnalyzeMemoryIntelligence(ctx, "u1")
	require.NoError(t, err)

	central := report.Insights.CentralMemories
	require.Len(t, central, 4)
	assert.Equal(t, "hub", central[0].MemoryID)
	assert.Equal(t, 3, central[0].Connections)
	for _, c := range central {
		assert.NotEqual(t, "loner", c.MemoryID)
	}
}

func TestDetectMemoryCommunities(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	seedMemory(t, store, "a1", "u1", "auth", testNow, "one")
	seedMemory(t, store, "a2", "u1", "auth", testNow, "two")
	seedMemory(t, store, "solo", "u1", "auth", testNow, "isolated")
	seedEdge(t, store, graph.RelRelatesTo, "a1", "a2")

	communities, err := engine.DetectMemoryCommunities(ctx, "u1")
	require.NoError(t, err)

	require.Contains(t, communities, "auth")
	assert.Len(t, communities["auth"], 2)
	for _, member := range communities["auth"] {
		assert.NotEqual(t, "solo", member.MemoryID)
	}
}
