package intelligence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"memcortex/internal/graph"
	apperrors "memcortex/pkg/errors"
	"memcortex/pkg/logger"
)

// Engine runs the knowledge-graph analysis operations over a graph.Store.
// It holds no graph state of its own; any backend satisfying the Store
// contract gives identical observable behavior.
type Engine struct {
	store  graph.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates an engine over the given store
func NewEngine(store graph.Store) *Engine {
	return &Engine{
		store:  store,
		logger: logger.Get(),
		now:    time.Now,
	}
}

// SyncMemory upserts a memory node from a primary-store record. It is the
// unit of work the replication scheduler retries; calling it twice for the
// same id is safe.
func (e *Engine) SyncMemory(ctx context.Context, memoryID, text, userID string, metadata map[string]any) error {
	props := map[string]any{
		graph.PropText:   text,
		graph.PropUserID: userID,
	}
	if topic, ok := metadata[graph.PropTopic].(string); ok && topic != "" {
		props[graph.PropTopic] = topic
	}
	if version, ok := metadata[graph.PropVersion].(string); ok && version != "" {
		props[graph.PropVersion] = version
	}

	// Stamp creation time only for a node we have not seen; re-syncs keep
	// the original timestamp.
	if _, err := e.store.GetNode(ctx, graph.KindMemory, memoryID); err != nil {
		if !apperrors.IsNotFound(err) {
			return err
		}
		props[graph.PropCreated] = e.now()
	}

	if err := e.store.UpsertNode(ctx, graph.KindMemory, memoryID, props); err != nil {
		return err
	}

	e.logger.Debug("Memory synced to graph",
		zap.String("memory_id", memoryID),
		zap.String("user_id", userID),
	)
	return nil
}

// memoryRef builds a Memory node reference
func memoryRef(id string) graph.NodeRef {
	return graph.NodeRef{Kind: graph.KindMemory, Key: id}
}

// componentRef builds a Component node reference
func componentRef(name string) graph.NodeRef {
	return graph.NodeRef{Kind: graph.KindComponent, Key: name}
}

// decisionRef builds a Decision node reference
func decisionRef(id string) graph.NodeRef {
	return graph.NodeRef{Kind: graph.KindDecision, Key: id}
}
