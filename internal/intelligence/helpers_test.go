package intelligence

import (
	"context"
	"testing"
	"time"

	"memcortex/internal/graph"
)

// Fixed reference instant so age-based scoring is reproducible
var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() (*Engine, *graph.MemStore) {
	store := graph.NewMemStore()
	engine := NewEngine(store)
	engine.now = func() time.Time { return testNow }
	return engine, store
}

func seedMemory(t *testing.T, store *graph.MemStore, id, userID, topic string, created time.Time, text string) {
	t.Helper()
	props := map[string]any{
		graph.PropText:    text,
		graph.PropUserID:  userID,
		graph.PropCreated: created,
	}
	if topic != "" {
		props[graph.PropTopic] = topic
	}
	if err := store.UpsertNode(context.Background(), graph.KindMemory, id, props); err != nil {
		t.Fatalf("seed memory %s: %v", id, err)
	}
}

func seedEdge(t *testing.T, store *graph.MemStore, kind, fromID, toID string) {
	t.Helper()
	err := store.UpsertEdge(context.Background(), kind,
		graph.NodeRef{Kind: graph.KindMemory, Key: fromID},
		graph.NodeRef{Kind: graph.KindMemory, Key: toID}, nil)
	if err != nil {
		t.Fatalf("seed edge %s-%s->%s: %v", fromID, kind, toID, err)
	}
}
