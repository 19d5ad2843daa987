package intelligence

import (
	"context"

	"go.uber.org/zap"

	"memcortex/internal/graph"
	apperrors "memcortex/pkg/errors"
)

// LinkMemories creates or refreshes a typed relationship between two
// existing memories. The relationship type is stored as given; kinds outside
// the documented vocabulary are permitted so new types do not require a
// lockstep upgrade. Re-linking the same pair and type updates the edge
// metadata instead of duplicating the edge.
func (e *Engine) LinkMemories(ctx context.Context, memoryID1, memoryID2, relationshipType string, metadata map[string]any) (*LinkResult, error) {
	if relationshipType == "" {
		relationshipType = graph.RelRelatesTo
	}

	props := map[string]any{graph.PropCreated: e.now()}
	if metadata != nil {
		props[graph.PropMetadata] = metadata
	}

	err := e.store.UpsertEdge(ctx, relationshipType, memoryRef(memoryID1), memoryRef(memoryID2), props)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Memories linked",
		zap.String("from", memoryID1),
		zap.String("relationship", relationshipType),
		zap.String("to", memoryID2),
	)

	return &LinkResult{
		FromMemoryID: memoryID1,
		Relationship: relationshipType,
		ToMemoryID:   memoryID2,
		Metadata:     metadata,
	}, nil
}

// CreateComponent upserts a technical component node (Feature, Service,
// Database, ...) keyed by its name
func (e *Engine) CreateComponent(ctx context.Context, name, componentType string, metadata map[string]any) (*ComponentResult, error) {
	if componentType == "" {
		componentType = "Component"
	}

	props := map[string]any{
		graph.PropType:    componentType,
		graph.PropCreated: e.now(),
	}
	if metadata != nil {
		props[graph.PropMetadata] = metadata
	}

	if err := e.store.UpsertNode(ctx, graph.KindComponent, name, props); err != nil {
		return nil, err
	}

	return &ComponentResult{Name: name, Type: componentType, Metadata: metadata}, nil
}

// LinkComponentDependency records that one component depends on another.
// The dependency type defaults to DEPENDS_ON; only DEPENDS_ON edges feed
// impact analysis, other types are stored as plain graph data.
func (e *Engine) LinkComponentDependency(ctx context.Context, componentFrom, componentTo, dependencyType string) (*DependencyLink, error) {
	if dependencyType == "" {
		dependencyType = graph.RelDependsOn
	}

	props := map[string]any{graph.PropCreated: e.now()}
	err := e.store.UpsertEdge(ctx, dependencyType, componentRef(componentFrom), componentRef(componentTo), props)
	if err != nil {
		return nil, err
	}

	return &DependencyLink{From: componentFrom, Relationship: dependencyType, To: componentTo}, nil
}

// LinkMemoryToComponent records that a memory affects a component
func (e *Engine) LinkMemoryToComponent(ctx context.Context, memoryID, componentName string) (*AffectsLink, error) {
	props := map[string]any{graph.PropCreated: e.now()}
	err := e.store.UpsertEdge(ctx, graph.RelAffects, memoryRef(memoryID), componentRef(componentName), props)
	if err != nil {
		return nil, err
	}

	return &AffectsLink{MemoryID: memoryID, Affects: componentName}, nil
}

// CreateConversationThread links memories into a thread with sequential
// RESPONDS_TO edges: each memory responds to the one before it.
func (e *Engine) CreateConversationThread(ctx context.Context, memories []string, sessionID string) (*ThreadResult, error) {
	if len(memories) < 2 {
		return nil, apperrors.NewMalformedInput("need at least 2 memories for a thread")
	}

	for i := 0; i < len(memories)-1; i++ {
		props := map[string]any{graph.PropOrder: i}
		if sessionID != "" {
			props["session_id"] = sessionID
		}
		err := e.store.UpsertEdge(ctx, graph.RelRespondsTo, memoryRef(memories[i+1]), memoryRef(memories[i]), props)
		if err != nil {
			return nil, err
		}
	}

	return &ThreadResult{
		ThreadLength: len(memories),
		SessionID:    sessionID,
		MemoryIDs:    memories,
	}, nil
}
