package graph

import (
	"context"
	"sync"

	apperrors "memcortex/pkg/errors"
)

type edgeKey struct {
	kind string
	from NodeRef
	to   NodeRef
}

// MemStore is the embedded graph backend: an arena of nodes with adjacency
// lists indexed by direction. Upserts are commutative and idempotent
// (merge-by-key), so concurrent writers need no coordination beyond the
// store's own lock; non-key properties are last-write-wins.
type MemStore struct {
	mu    sync.RWMutex
	nodes map[NodeRef]*Node
	order map[NodeKind][]string
	out   map[NodeRef][]*Edge
	in    map[NodeRef][]*Edge
	edges map[edgeKey]*Edge
}

// NewMemStore creates an empty embedded store
func NewMemStore() *MemStore {
	return &MemStore{
		nodes: make(map[NodeRef]*Node),
		order: make(map[NodeKind][]string),
		out:   make(map[NodeRef][]*Edge),
		in:    make(map[NodeRef][]*Edge),
		edges: make(map[edgeKey]*Edge),
	}
}

// UpsertNode creates the node or merges props onto the existing one
func (s *MemStore) UpsertNode(_ context.Context, kind NodeKind, key string, props map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := NodeRef{Kind: kind, Key: key}
	node, ok := s.nodes[ref]
	if !ok {
		node = &Node{Kind: kind, Key: key, Props: make(map[string]any)}
		s.nodes[ref] = node
		s.order[kind] = append(s.order[kind], key)
	}
	for k, v := range props {
		node.Props[k] = v
	}
	return nil
}

// UpsertEdge creates the edge or merges props onto the existing one.
// Both endpoints must already exist.
func (s *MemStore) UpsertEdge(_ context.Context, kind string, from, to NodeRef, props map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[from]; !ok {
		return apperrors.NewEntityNotFound(string(from.Kind), from.Key)
	}
	if _, ok := s.nodes[to]; !ok {
		return apperrors.NewEntityNotFound(string(to.Kind), to.Key)
	}

	key := edgeKey{kind: kind, from: from, to: to}
	edge, ok := s.edges[key]
	if !ok {
		edge = &Edge{Kind: kind, From: from, To: to, Props: make(map[string]any)}
		s.edges[key] = edge
		s.out[from] = append(s.out[from], edge)
		s.in[to] = append(s.in[to], edge)
	}
	for k, v := range props {
		edge.Props[k] = v
	}
	return nil
}

// GetNode returns a snapshot of the node, or entity-not-found
func (s *MemStore) GetNode(_ context.Context, kind NodeKind, key string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[NodeRef{Kind: kind, Key: key}]
	if !ok {
		return nil, apperrors.NewEntityNotFound(string(kind), key)
	}
	return copyNode(node), nil
}

// NodesByProperty returns nodes of a kind whose property equals value,
// in insertion order
func (s *MemStore) NodesByProperty(_ context.Context, kind NodeKind, prop string, value any) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Node
	for _, key := range s.order[kind] {
		node := s.nodes[NodeRef{Kind: kind, Key: key}]
		if node.Props[prop] == value {
			result = append(result, copyNode(node))
		}
	}
	return result, nil
}

// Edges returns incident edges in insertion order, filtered to the listed
// kinds when given
func (s *MemStore) Edges(_ context.Context, ref NodeRef, dir Direction, kinds []string) ([]*Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []*Edge
	switch dir {
	case Outgoing:
		candidates = s.out[ref]
	case Incoming:
		candidates = s.in[ref]
	case Both:
		candidates = append(append([]*Edge{}, s.out[ref]...), s.in[ref]...)
	}

	var result []*Edge
	for _, edge := range candidates {
		if len(kinds) > 0 && !containsKind(kinds, edge.Kind) {
			continue
		}
		result = append(result, copyEdge(edge))
	}
	return result, nil
}

// Close is a no-op for the embedded store
func (s *MemStore) Close(_ context.Context) error {
	return nil
}

func containsKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func copyNode(n *Node) *Node {
	props := make(map[string]any, len(n.Props))
	for k, v := range n.Props {
		props[k] = v
	}
	return &Node{Kind: n.Kind, Key: n.Key, Props: props}
}

func copyEdge(e *Edge) *Edge {
	props := make(map[string]any, len(e.Props))
	for k, v := range e.Props {
		props[k] = v
	}
	return &Edge{Kind: e.Kind, From: e.From, To: e.To, Props: props}
}
