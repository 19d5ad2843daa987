package intelligence

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"memcortex/internal/graph"
)

const (
	uncategorizedTopic = "uncategorized"
	maxConflictTopics  = 5
	maxCentralMemories = 10
	degreeFetchWorkers = 8
)

// memoryStats is a user memory with its precomputed degree
type memoryStats struct {
	node   *graph.Node
	degree int
	edges  []*graph.Edge
}

// AnalyzeMemoryIntelligence generates a composite intelligence report about
// a user's memory graph: connectivity statistics, obsolescence, conflicts,
// topic clusters, central memories, a 0-10 health score, and rule-based
// recommendations.
func (e *Engine) AnalyzeMemoryIntelligence(ctx context.Context, userID string) (*IntelligenceReport, error) {
	stats, err := e.collectMemoryStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := len(stats)
	totalDegree := 0
	isolated := 0
	for _, s := range stats {
		totalDegree += s.degree
		if s.degree == 0 {
			isolated++
		}
	}
	avgConnections := 0.0
	if total > 0 {
		avgConnections = float64(totalDegree) / float64(total)
	}

	obsoleteCount := countObsolete(stats)
	conflicts := topConflictingTopics(stats)
	clusters := clusterByTopic(stats)
	central := centralMemories(stats)

	// Divisor floored to 1 so an empty graph still yields a score
	divisor := float64(total)
	if divisor < 1 {
		divisor = 1
	}
	connectivityScore := avgConnections * 10
	isolationPenalty := float64(isolated) / divisor * 100
	obsoletePenalty := 0.0
	if obsoleteCount > 0 {
		obsoletePenalty = float64(obsoleteCount) / divisor * 50
	}
	healthScore := math.Max(0, math.Min(10, connectivityScore-isolationPenalty-obsoletePenalty))

	clusterSizes := make(map[string]int, len(clusters))
	for topic, members := range clusters {
		clusterSizes[topic] = len(members)
	}

	return &IntelligenceReport{
		Summary: ReportSummary{
			TotalMemories:        total,
			AvgConnections:       math.Round(avgConnections*100) / 100,
			IsolatedMemories:     isolated,
			ObsoleteMemories:     obsoleteCount,
			KnowledgeHealthScore: math.Round(healthScore*10) / 10,
		},
		Insights: ReportInsights{
			ConflictingKnowledge: conflicts,
			KnowledgeClusters:    clusterSizes,
			CentralMemories:      central,
		},
		Recommendations: recommendations(isolated, obsoleteCount, len(conflicts), healthScore),
	}, nil
}

// DetectMemoryCommunities groups a user's connected memories by topic.
// This is a naive topic-field grouping, not a real community-detection
// algorithm (no label propagation); memories without a topic land in the
// "uncategorized" bucket.
func (e *Engine) DetectMemoryCommunities(ctx context.Context, userID string) (map[string][]CommunityMember, error) {
	stats, err := e.collectMemoryStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return clusterByTopic(stats), nil
}

// collectMemoryStats loads a user's memories and fans out the per-memory
// degree reads across a bounded worker group.
func (e *Engine) collectMemoryStats(ctx context.Context, userID string) ([]*memoryStats, error) {
	nodes, err := e.store.NodesByProperty(ctx, graph.KindMemory, graph.PropUserID, userID)
	if err != nil {
		return nil, err
	}

	stats := make([]*memoryStats, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(degreeFetchWorkers)
	for i, node := range nodes {
		i, node := i, node
		g.Go(func() error {
			edges, err := e.store.Edges(gctx, memoryRef(node.Key), graph.Both, nil)
			if err != nil {
				return err
			}
			stats[i] = &memoryStats{node: node, degree: len(edges), edges: edges}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func countObsolete(stats []*memoryStats) int {
	obsolete := make(map[string]bool)
	for _, s := range stats {
		for _, edge := range s.edges {
			if edge.Kind == graph.RelSupersedes && edge.From.Key == s.node.Key {
				obsolete[edge.To.Key] = true
			}
		}
	}
	return len(obsolete)
}

func topConflictingTopics(stats []*memoryStats) []TopicConflict {
	counts := make(map[string]int)
	for _, s := range stats {
		conflicts := 0
		for _, edge := range s.edges {
			if edge.Kind == graph.RelConflictsWith {
				conflicts++
			}
		}
		if conflicts > 0 {
			counts[graph.StringProp(s.node, graph.PropTopic)] += conflicts
		}
	}

	result := make([]TopicConflict, 0, len(counts))
	for topic, count := range counts {
		result = append(result, TopicConflict{Topic: topic, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Topic < result[j].Topic
	})
	if len(result) > maxConflictTopics {
		result = result[:maxConflictTopics]
	}
	return result
}

func clusterByTopic(stats []*memoryStats) map[string][]CommunityMember {
	communities := make(map[string][]CommunityMember)
	for _, s := range stats {
		if s.degree == 0 {
			continue
		}
		topic := graph.StringProp(s.node, graph.PropTopic)
		if topic == "" {
			topic = uncategorizedTopic
		}
		communities[topic] = append(communities[topic], CommunityMember{
			MemoryID:    s.node.Key,
			Text:        graph.StringProp(s.node, graph.PropText),
			Connections: s.degree,
		})
	}
	for _, members := range communities {
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Connections > members[j].Connections
		})
	}
	return communities
}

func centralMemories(stats []*memoryStats) []CentralMemory {
	var connected []*memoryStats
	for _, s := range stats {
		if s.degree > 0 {
			connected = append(connected, s)
		}
	}
	sort.SliceStable(connected, func(i, j int) bool {
		return connected[i].degree > connected[j].degree
	})
	if len(connected) > maxCentralMemories {
		connected = connected[:maxCentralMemories]
	}

	result := make([]CentralMemory, 0, len(connected))
	for _, s := range connected {
		result = append(result, CentralMemory{
			MemoryID:    s.node.Key,
			Text:        graph.StringProp(s.node, graph.PropText),
			Connections: s.degree,
		})
	}
	return result
}

// recommendations applies the advisory rules in order; rules are
// independent and more than one can fire.
func recommendations(isolated, obsolete, conflicts int, healthScore float64) []string {
	var recs []string

	if isolated > 5 {
		recs = append(recs, fmt.Sprintf("Link %d isolated memories to related knowledge for better context", isolated))
	}
	if obsolete > 3 {
		recs = append(recs, fmt.Sprintf("Archive or update %d obsolete memories", obsolete))
	}
	if conflicts > 0 {
		recs = append(recs, fmt.Sprintf("Resolve %d conflicting topics to maintain knowledge consistency", conflicts))
	}
	if healthScore < 5 {
		recs = append(recs, "Knowledge graph health is low - consider adding more connections between related memories")
	}
	if len(recs) == 0 {
		recs = append(recs, "Memory graph is healthy! Continue building interconnected knowledge")
	}
	return recs
}
