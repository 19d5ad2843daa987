package intelligence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memcortex/internal/graph"
	apperrors "memcortex/pkg/errors"
)

func TestCreateDecisionAndRationale(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	result, err := engine.CreateDecision(ctx, "Use Postgres",
		"u1",
		[]string{"ACID", "pgvector"},
		[]string{"scaling"},
		[]string{"MongoDB"},
		nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.DecisionID)
	assert.Equal(t, "Use Postgres", result.Text)

	rationale, err := engine.DecisionRationale(ctx, result.DecisionID)
	require.NoError(t, err)
	assert.Equal(t, "Use Postgres", rationale.Decision)
	assert.Equal(t, []string{"ACID", "pgvector"}, rationale.Pros)
	assert.Equal(t, []string{"scaling"}, rationale.Cons)
	assert.Equal(t, []string{"MongoDB"}, rationale.AlternativesConsidered)
	assert.Equal(t, testNow, rationale.Created)
}

func TestCreateDecision_AlternativesMergedByText(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	_, err := engine.CreateDecision(ctx, "Use Postgres", "u1", nil, nil, []string{"MongoDB"}, nil)
	require.NoError(t, err)
	_, err = engine.CreateDecision(ctx, "Use TimescaleDB", "u1", nil, nil, []string{"MongoDB"}, nil)
	require.NoError(t, err)

	alts, err := store.NodesByProperty(ctx, graph.KindDecision, graph.PropText, "MongoDB")
	require.NoError(t, err)
	assert.Len(t, alts, 1)
}

func TestDecisionRationale_EmptyArguments(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	result, err := engine.CreateDecision(ctx, "Ship it", "u1", nil, nil, nil, nil)
	require.NoError(t, err)

	rationale, err := engine.DecisionRationale(ctx, result.DecisionID)
	require.NoError(t, err)
	assert.Empty(t, rationale.Pros)
	assert.Empty(t, rationale.Cons)
	assert.Empty(t, rationale.AlternativesConsidered)
}

func TestDecisionRationale_UnknownDecision(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.DecisionRationale(context.Background(), "decision_ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTrustScore_FreshMemoryNoEvidence(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	seedMemory(t, store, "m1", "u1", "", testNow, "fresh knowledge")

	report, err := engine.TrustScore(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Factors.Validations)
	assert.Equal(t, 0, report.Factors.Citations)
	assert.Equal(t, 0, report.Factors.AgeDays)
	assert.InDelta(t, 10.0, report.TrustScore, 0.001)
}

func TestTrustScore_ValidationsAndCitations(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	seedMemory(t, store, "m1", "u1", "", testNow, "validated knowledge")
	seedMemory(t, store, "citer1", "u1", "", testNow, "builds on m1")
	seedMemory(t, store, "citer2", "u1", "", testNow, "also builds on m1")
	seedEdge(t, store, graph.RelCites, "citer1", "m1")
	seedEdge(t, store, graph.RelCites, "citer2", "m1")

	_, err := engine.RecordValidation(ctx, "m1", "confirmed")
	require.NoError(t, err)
	_, err = engine.RecordValidation(ctx, "m1", "confirmed")
	require.NoError(t, err)
	// Rejected validations don't count
	_, err = engine.RecordValidation(ctx, "m1", "rejected")
	require.NoError(t, err)

	report, err := engine.TrustScore(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Factors.Validations)
	assert.Equal(t, 2, report.Factors.Citations)
	// 2*2 + 2 + 10 (age zero)
	assert.InDelta(t, 16.0, report.TrustScore, 0.001)
}

func TestTrustScore_OldMemoryRecencyFloor(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	seedMemory(t, store, "old", "u1", "", testNow.AddDate(-2, 0, 0), "ancient knowledge")

	report, err := engine.TrustScore(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Factors.RecencyFactor)
	assert.InDelta(t, 0.0, report.TrustScore, 0.001)
}

func TestTrustScore_WritesScoreBack(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	seedMemory(t, store, "m1", "u1", "", testNow.AddDate(0, 0, -30), "month-old")

	report, err := engine.TrustScore(ctx, "m1")
	require.NoError(t, err)
	assert.InDelta(t, 9.0, report.TrustScore, 0.001)

	node, err := store.GetNode(ctx, graph.KindMemory, "m1")
	require.NoError(t, err)
	stored, ok := node.Props[graph.PropTrustScore].(float64)
	require.True(t, ok)
	assert.InDelta(t, report.TrustScore, stored, 0.001)

	// Stored value doesn't exist until the first computation
	seedMemory(t, store, "m2", "u1", "", testNow, "never scored")
	fresh, err := store.GetNode(ctx, graph.KindMemory, "m2")
	require.NoError(t, err)
	_, present := fresh.Props[graph.PropTrustScore]
	assert.False(t, present)
}

func TestTrustScore_UnknownMemory(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.TrustScore(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRecordValidation_UnknownMemory(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.RecordValidation(context.Background(), "ghost", "confirmed")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTrustScore_MissingCreatedDefaultsStale(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	err := store.UpsertNode(ctx, graph.KindMemory, "undated", map[string]any{graph.PropText: "no timestamp"})
	require.NoError(t, err)

	report, err := engine.TrustScore(ctx, "undated")
	require.NoError(t, err)
	assert.Equal(t, 365, report.Factors.AgeDays)
	assert.Equal(t, 0.0, report.Factors.RecencyFactor)
}
