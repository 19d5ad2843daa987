package intelligence

import "time"

// Wire shapes for the graph intelligence operations. Field names are part of
// the external contract and must stay stable.

// LinkResult describes a created or refreshed memory relationship
type LinkResult struct {
	FromMemoryID string         `json:"from_memory_id"`
	Relationship string         `json:"relationship"`
	ToMemoryID   string         `json:"to_memory_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// RelatedMemory is one hit of a bounded-depth traversal
type RelatedMemory struct {
	MemoryID         string   `json:"memory_id"`
	Text             string   `json:"text"`
	RelationshipPath []string `json:"relationship_path"`
	Distance         int      `json:"distance"`
}

// PathResult is the shortest relationship path between two memories
type PathResult struct {
	MemoryIDs     []string `json:"memory_ids"`
	Relationships []string `json:"relationships"`
	PathLength    int      `json:"path_length"`
}

// ThreadEntry is one memory in a reconstructed conversation thread
type ThreadEntry struct {
	MemoryID string    `json:"memory_id"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created"`
}

// ThreadResult echoes a created conversation thread
type ThreadResult struct {
	ThreadLength int      `json:"thread_length"`
	SessionID    string   `json:"session_id,omitempty"`
	MemoryIDs    []string `json:"memory_ids"`
}

// MemorySummary identifies a memory with its text and timestamp
type MemorySummary struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// SupersededRef points at the memory an evolution step replaced
type SupersededRef struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// EvolutionEntry is one step in a topic's knowledge evolution
type EvolutionEntry struct {
	MemoryID   string         `json:"memory_id"`
	Text       string         `json:"text"`
	Created    time.Time      `json:"created"`
	Version    string         `json:"version,omitempty"`
	Superseded *SupersededRef `json:"superseded"`
}

// SupersededPair couples an obsolete memory with its replacement
type SupersededPair struct {
	ObsoleteMemory MemorySummary `json:"obsolete_memory"`
	CurrentMemory  MemorySummary `json:"current_memory"`
}

// ComponentResult echoes a created component
type ComponentResult struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DependencyLink echoes a component dependency edge
type DependencyLink struct {
	From         string `json:"from"`
	Relationship string `json:"relationship"`
	To           string `json:"to"`
}

// AffectsLink echoes a memory-to-component link
type AffectsLink struct {
	MemoryID string `json:"memory_id"`
	Affects  string `json:"affects"`
}

// MemoryRef identifies a memory affecting a component
type MemoryRef struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// CascadeRef identifies a memory affecting a transitively dependent component
type CascadeRef struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Affects string `json:"affects"`
}

// ImpactReport is the result of component impact analysis
type ImpactReport struct {
	Component           string       `json:"component"`
	DependentComponents []string     `json:"dependent_components"`
	AffectingMemories   []MemoryRef  `json:"affecting_memories"`
	CascadeImpact       []CascadeRef `json:"cascade_impact"`
	ImpactScore         int          `json:"impact_score"`
}

// DecisionResult echoes a created decision
type DecisionResult struct {
	DecisionID   string   `json:"decision_id"`
	Text         string   `json:"text"`
	Pros         []string `json:"pros"`
	Cons         []string `json:"cons"`
	Alternatives []string `json:"alternatives"`
}

// RationaleResult is the aggregated rationale behind a decision
type RationaleResult struct {
	Decision               string         `json:"decision"`
	Created                time.Time      `json:"created"`
	Metadata               map[string]any `json:"metadata,omitempty"`
	Pros                   []string       `json:"pros"`
	Cons                   []string       `json:"cons"`
	AlternativesConsidered []string       `json:"alternatives_considered"`
}

// TrustFactors breaks a trust score into its signals
type TrustFactors struct {
	Validations   int     `json:"validations"`
	Citations     int     `json:"citations"`
	RecencyFactor float64 `json:"recency_factor"`
	AgeDays       int     `json:"age_days"`
}

// TrustReport is the computed trust score for a memory
type TrustReport struct {
	MemoryID   string       `json:"memory_id"`
	TrustScore float64      `json:"trust_score"`
	Factors    TrustFactors `json:"factors"`
}

// ValidationResult echoes a recorded validation
type ValidationResult struct {
	ValidationID string `json:"validation_id"`
	MemoryID     string `json:"memory_id"`
	Result       string `json:"result"`
}

// TopicConflict counts conflict edges on a topic
type TopicConflict struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// CommunityMember is one memory inside a topic cluster
type CommunityMember struct {
	MemoryID    string `json:"memory_id"`
	Text        string `json:"text"`
	Connections int    `json:"connections"`
}

// CentralMemory is a highly connected memory
type CentralMemory struct {
	MemoryID    string `json:"memory_id"`
	Text        string `json:"text"`
	Connections int    `json:"connections"`
}

// ReportSummary aggregates graph-level statistics for a user
type ReportSummary struct {
	TotalMemories        int     `json:"total_memories"`
	AvgConnections       float64 `json:"avg_connections"`
	IsolatedMemories     int     `json:"isolated_memories"`
	ObsoleteMemories     int     `json:"obsolete_memories"`
	KnowledgeHealthScore float64 `json:"knowledge_health_score"`
}

// ReportInsights carries the analytical passes of the intelligence report
type ReportInsights struct {
	ConflictingKnowledge []TopicConflict `json:"conflicting_knowledge"`
	KnowledgeClusters    map[string]int  `json:"knowledge_clusters"`
	CentralMemories      []CentralMemory `json:"central_memories"`
}

// IntelligenceReport is the composite intelligence analysis for a user
type IntelligenceReport struct {
	Summary         ReportSummary  `json:"summary"`
	Insights        ReportInsights `json:"insights"`
	Recommendations []string       `json:"recommendations"`
}
