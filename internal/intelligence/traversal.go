package intelligence

import (
	"context"
	"sort"

	"memcortex/internal/graph"
	apperrors "memcortex/pkg/errors"
)

// RelatedMemories explores relationships around a memory up to depth hops,
// treating edges as undirected. Results are deduplicated by target, ordered
// by ascending hop distance (insertion order within a distance), and never
// include the start memory. Intermediate hops may pass through non-memory
// nodes; only memories are reported.
func (e *Engine) RelatedMemories(ctx context.Context, memoryID string, depth int, relationshipTypes []string) ([]RelatedMemory, error) {
	if depth < 1 {
		return nil, apperrors.NewMalformedInput("depth must be at least 1")
	}

	start := memoryRef(memoryID)
	if _, err := e.store.GetNode(ctx, graph.KindMemory, memoryID); err != nil {
		if apperrors.IsNotFound(err) {
			return []RelatedMemory{}, nil
		}
		return nil, err
	}

	type frontierEntry struct {
		ref  graph.NodeRef
		path []string
	}

	visited := map[graph.NodeRef]bool{start: true}
	frontier := []frontierEntry{{ref: start}}
	var results []RelatedMemory

	for dist := 1; dist <= depth && len(frontier) > 0; dist++ {
		var next []frontierEntry
		for _, entry := range frontier {
			edges, err := e.store.Edges(ctx, entry.ref, graph.Both, relationshipTypes)
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				neighbor := otherEnd(edge, entry.ref)
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true

				path := append(append([]string{}, entry.path...), edge.Kind)
				next = append(next, frontierEntry{ref: neighbor, path: path})

				if neighbor.Kind != graph.KindMemory {
					continue
				}
				node, err := e.store.GetNode(ctx, graph.KindMemory, neighbor.Key)
				if err != nil {
					return nil, err
				}
				results = append(results, RelatedMemory{
					MemoryID:         neighbor.Key,
					Text:             graph.StringProp(node, graph.PropText),
					RelationshipPath: path,
					Distance:         dist,
				})
			}
		}
		frontier = next
	}

	return results, nil
}

// FindPath returns the shortest undirected relationship path between two
// memories, or nil when no path connects them. Among equal-length paths the
// first one discovered wins; edge iteration order is stable for a fixed
// graph state, so the result is deterministic.
func (e *Engine) FindPath(ctx context.Context, fromMemoryID, toMemoryID string) (*PathResult, error) {
	start := memoryRef(fromMemoryID)
	goal := memoryRef(toMemoryID)

	if _, err := e.store.GetNode(ctx, graph.KindMemory, fromMemoryID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if fromMemoryID == toMemoryID {
		return &PathResult{MemoryIDs: []string{fromMemoryID}, Relationships: []string{}, PathLength: 0}, nil
	}

	visited := map[graph.NodeRef]bool{start: true}
	frontier := []*pathStep{{ref: start}}

	for len(frontier) > 0 {
		var next []*pathStep
		for _, cur := range frontier {
			edges, err := e.store.Edges(ctx, cur.ref, graph.Both, nil)
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				neighbor := otherEnd(edge, cur.ref)
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true

				s := &pathStep{ref: neighbor, prev: cur, via: edge.Kind}
				if neighbor == goal {
					return buildPath(s), nil
				}
				next = append(next, s)
			}
		}
		frontier = next
	}

	return nil, nil
}

// ConversationThread reconstructs the thread a memory belongs to by walking
// RESPONDS_TO edges back to the root and forward to the leaf. A visited set
// guards against malformed cyclic data: each memory appears once and the
// walk terminates.
func (e *Engine) ConversationThread(ctx context.Context, memoryID string) ([]ThreadEntry, error) {
	start := memoryRef(memoryID)
	if _, err := e.store.GetNode(ctx, graph.KindMemory, memoryID); err != nil {
		if apperrors.IsNotFound(err) {
			return []ThreadEntry{}, nil
		}
		return nil, err
	}

	visited := map[graph.NodeRef]bool{start: true}
	chain := []graph.NodeRef{start}

	// Backward: a memory responds to its predecessor
	for cur := start; ; {
		edges, err := e.store.Edges(ctx, cur, graph.Outgoing, []string{graph.RelRespondsTo})
		if err != nil {
			return nil, err
		}
		if len(edges) == 0 || visited[edges[0].To] {
			break
		}
		cur = edges[0].To
		visited[cur] = true
		chain = append(chain, cur)
	}

	// Forward: successors respond to this memory
	for cur := start; ; {
		edges, err := e.store.Edges(ctx, cur, graph.Incoming, []string{graph.RelRespondsTo})
		if err != nil {
			return nil, err
		}
		if len(edges) == 0 || visited[edges[0].From] {
			break
		}
		cur = edges[0].From
		visited[cur] = true
		chain = append(chain, cur)
	}

	entries := make([]ThreadEntry, 0, len(chain))
	for _, ref := range chain {
		node, err := e.store.GetNode(ctx, graph.KindMemory, ref.Key)
		if err != nil {
			return nil, err
		}
		created, _ := graph.CreatedTime(node)
		entries = append(entries, ThreadEntry{
			MemoryID: ref.Key,
			Text:     graph.StringProp(node, graph.PropText),
			Created:  created,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Created.Before(entries[j].Created)
	})
	return entries, nil
}

func otherEnd(edge *graph.Edge, ref graph.NodeRef) graph.NodeRef {
	if edge.From == ref {
		return edge.To
	}
	return edge.From
}

type pathStep struct {
	ref  graph.NodeRef
	prev *pathStep
	via  string
}

func buildPath(last *pathStep) *PathResult {
	var refs []graph.NodeRef
	var rels []string
	for s := last; s != nil; s = s.prev {
		refs = append(refs, s.ref)
		if s.via != "" {
			rels = append(rels, s.via)
		}
	}
	// Reverse into start-to-goal order
	ids := make([]string, 0, len(refs))
	for i := len(refs) - 1; i >= 0; i-- {
		ids = append(ids, refs[i].Key)
	}
	relationships := make([]string, 0, len(rels))
	for i := len(rels) - 1; i >= 0; i-- {
		relationships = append(relationships, rels[i])
	}
	return &PathResult{
		MemoryIDs:     ids,
		Relationships: relationships,
		PathLength:    len(relationships),
	}
}
