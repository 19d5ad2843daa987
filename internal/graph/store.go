package graph

import (
	"context"
	"time"
)

// NodeKind labels the fixed set of node types in the knowledge graph
type NodeKind string

const (
	KindMemory     NodeKind = "Memory"
	KindComponent  NodeKind = "Component"
	KindDecision   NodeKind = "Decision"
	KindArgument   NodeKind = "Argument"
	KindValidation NodeKind = "Validation"
)

// Well-known relationship kinds. Callers may supply kinds outside this set;
// they are stored as given so new relationship types do not require a
// coordinated upgrade.
const (
	RelRelatesTo     = "RELATES_TO"
	RelDependsOn     = "DEPENDS_ON"
	RelSupersedes    = "SUPERSEDES"
	RelRespondsTo    = "RESPONDS_TO"
	RelExtends       = "EXTENDS"
	RelConflictsWith = "CONFLICTS_WITH"
	RelAffects       = "AFFECTS"
	RelBasedOn       = "BASED_ON"
	RelConsidered    = "CONSIDERED"
	RelChosenOver    = "CHOSEN_OVER"
	RelValidates     = "VALIDATES"
	RelCites         = "CITES"
)

// Common node property keys
const (
	PropText       = "text"
	PropUserID     = "user_id"
	PropCreated    = "created"
	PropTopic      = "topic"
	PropVersion    = "version"
	PropTrustScore = "trust_score"
	PropType       = "type"
	PropChosen     = "chosen"
	PropOrder      = "order"
	PropResult     = "result"
	PropMetadata   = "metadata"
)

// NodeRef identifies a node by kind and key
type NodeRef struct {
	Kind NodeKind
	Key  string
}

// Node is a typed node with a property bag
type Node struct {
	Kind  NodeKind
	Key   string
	Props map[string]any
}

// Edge is a directed, typed, property-bearing relationship
type Edge struct {
	Kind  string
	From  NodeRef
	To    NodeRef
	Props map[string]any
}

// Direction selects which incident edges to read
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Both
)

// Store is the persistence contract for the knowledge graph.
//
// All upserts carry MERGE semantics: re-creating a node with the same
// kind/key, or an edge with the same kind/from/to, updates properties
// (last-write-wins) instead of duplicating. UpsertEdge requires both
// endpoints to already exist and fails with an entity-not-found error
// otherwise; the store never auto-creates endpoints for a link.
type Store interface {
	UpsertNode(ctx context.Context, kind NodeKind, key string, props map[string]any) error
	UpsertEdge(ctx context.Context, kind string, from, to NodeRef, props map[string]any) error
	GetNode(ctx context.Context, kind NodeKind, key string) (*Node, error)
	// NodesByProperty returns nodes of a kind whose property equals value,
	// in insertion order.
	NodesByProperty(ctx context.Context, kind NodeKind, prop string, value any) ([]*Node, error)
	// Edges returns edges incident to ref in the given direction, filtered
	// to the listed kinds (nil or empty means all kinds), in insertion order.
	Edges(ctx context.Context, ref NodeRef, dir Direction, kinds []string) ([]*Edge, error)
	Close(ctx context.Context) error
}

// CreatedTime extracts the creation timestamp property, reporting whether
// it was present and well-typed.
func CreatedTime(n *Node) (time.Time, bool) {
	if n == nil {
		return time.Time{}, false
	}
	t, ok := n.Props[PropCreated].(time.Time)
	return t, ok
}

// StringProp extracts a string property, returning "" when absent
func StringProp(n *Node, key string) string {
	if n == nil {
		return ""
	}
	s, _ := n.Props[key].(string)
	return s
}
