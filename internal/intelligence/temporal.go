package intelligence

import (
	"context"
	"sort"
	"time"

	"memcortex/internal/graph"
)

// MemoryEvolution tracks how knowledge about a topic evolved over time.
// Memories matching the topic (and the inclusive date range, when given)
// are returned ascending by creation time, each annotated with the memory
// it supersedes, if any.
func (e *Engine) MemoryEvolution(ctx context.Context, topic string, startDate, endDate *time.Time) ([]EvolutionEntry, error) {
	nodes, err := e.store.NodesByProperty(ctx, graph.KindMemory, graph.PropTopic, topic)
	if err != nil {
		return nil, err
	}

	var entries []EvolutionEntry
	for _, node := range nodes {
		created, _ := graph.CreatedTime(node)
		if startDate != nil && created.Before(*startDate) {
			continue
		}
		if endDate != nil && created.After(*endDate) {
			continue
		}

		entry := EvolutionEntry{
			MemoryID: node.Key,
			Text:     graph.StringProp(node, graph.PropText),
			Created:  created,
			Version:  graph.StringProp(node, graph.PropVersion),
		}

		edges, err := e.store.Edges(ctx, memoryRef(node.Key), graph.Outgoing, []string{graph.RelSupersedes})
		if err != nil {
			return nil, err
		}
		if len(edges) > 0 {
			old, err := e.store.GetNode(ctx, graph.KindMemory, edges[0].To.Key)
			if err == nil {
				entry.Superseded = &SupersededRef{
					ID:   old.Key,
					Text: graph.StringProp(old, graph.PropText),
				}
			}
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Created.Before(entries[j].Created)
	})
	return entries, nil
}

// SupersededMemories finds a user's memories that were replaced by newer
// knowledge, paired with their replacements and ordered by the superseding
// memory's creation time descending.
func (e *Engine) SupersededMemories(ctx context.Context, userID string) ([]SupersededPair, error) {
	nodes, err := e.store.NodesByProperty(ctx, graph.KindMemory, graph.PropUserID, userID)
	if err != nil {
		return nil, err
	}

	var pairs []SupersededPair
	for _, old := range nodes {
		edges, err := e.store.Edges(ctx, memoryRef(old.Key), graph.Incoming, []string{graph.RelSupersedes})
		if err != nil {
			return nil, err
		}
		for _, edge := range edges {
			current, err := e.store.GetNode(ctx, graph.KindMemory, edge.From.Key)
			if err != nil {
				continue
			}
			oldCreated, _ := graph.CreatedTime(old)
			curCreated, _ := graph.CreatedTime(current)
			pairs = append(pairs, SupersededPair{
				ObsoleteMemory: MemorySummary{
					ID:   old.Key,
					Text: graph.StringProp(old, graph.PropText),
					Date: oldCreated,
				},
				CurrentMemory: MemorySummary{
					ID:   current.Key,
					Text: graph.StringProp(current, graph.PropText),
					Date: curCreated,
				},
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].CurrentMemory.Date.After(pairs[j].CurrentMemory.Date)
	})
	return pairs, nil
}
