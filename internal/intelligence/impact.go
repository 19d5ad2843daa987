package intelligence

import (
	"context"

	"memcortex/internal/graph"
)

// ImpactAnalysis computes what changing a component would affect: the
// transitive closure of components depending on it (via DEPENDS_ON),
// memories directly affecting it, and memories affecting any transitively
// dependent component (the cascade set). The impact score is the additive
// count of dependents and cascade entries, an unnormalized severity proxy.
func (e *Engine) ImpactAnalysis(ctx context.Context, componentName string) (*ImpactReport, error) {
	if _, err := e.store.GetNode(ctx, graph.KindComponent, componentName); err != nil {
		return nil, err
	}

	target := componentRef(componentName)

	// Reverse transitive closure over DEPENDS_ON: an incoming edge means
	// the source depends on this component.
	visited := map[string]bool{componentName: true}
	var dependents []string
	frontier := []graph.NodeRef{target}
	for len(frontier) > 0 {
		var next []graph.NodeRef
		for _, ref := range frontier {
			edges, err := e.store.Edges(ctx, ref, graph.Incoming, []string{graph.RelDependsOn})
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				if edge.From.Kind != graph.KindComponent || visited[edge.From.Key] {
					continue
				}
				visited[edge.From.Key] = true
				dependents = append(dependents, edge.From.Key)
				next = append(next, edge.From)
			}
		}
		frontier = next
	}

	affecting, err := e.affectingMemories(ctx, target)
	if err != nil {
		return nil, err
	}

	var cascade []CascadeRef
	seen := make(map[[2]string]bool)
	for _, name := range dependents {
		memories, err := e.affectingMemories(ctx, componentRef(name))
		if err != nil {
			return nil, err
		}
		for _, m := range memories {
			key := [2]string{m.ID, name}
			if seen[key] {
				continue
			}
			seen[key] = true
			cascade = append(cascade, CascadeRef{ID: m.ID, Text: m.Text, Affects: name})
		}
	}

	return &ImpactReport{
		Component:           componentName,
		DependentComponents: dependents,
		AffectingMemories:   affecting,
		CascadeImpact:       cascade,
		ImpactScore:         len(dependents) + len(cascade),
	}, nil
}

func (e *Engine) affectingMemories(ctx context.Context, component graph.NodeRef) ([]MemoryRef, error) {
	edges, err := e.store.Edges(ctx, component, graph.Incoming, []string{graph.RelAffects})
	if err != nil {
		return nil, err
	}

	var refs []MemoryRef
	seen := make(map[string]bool)
	for _, edge := range edges {
		if edge.From.Kind != graph.KindMemory || seen[edge.From.Key] {
			continue
		}
		seen[edge.From.Key] = true
		node, err := e.store.GetNode(ctx, graph.KindMemory, edge.From.Key)
		if err != nil {
			continue
		}
		refs = append(refs, MemoryRef{ID: node.Key, Text: graph.StringProp(node, graph.PropText)})
	}
	return refs, nil
}
