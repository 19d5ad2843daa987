package graph

import (
	"context"
	"fmt"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "memcortex/pkg/errors"
	"memcortex/pkg/logger"
)

// Relationship kinds and node labels are interpolated into Cypher, so they
// must be plain identifiers. Caller-supplied kinds outside this shape are
// rejected as malformed input rather than stored.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Neo4jStore persists the knowledge graph in Neo4j. Every node carries a
// `key` property as its identity within its label; MERGE on (label, key)
// gives the idempotent upsert semantics the Store contract requires.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewNeo4jStore creates a store over an existing driver
func NewNeo4jStore(driver neo4j.DriverWithContext) *Neo4jStore {
	return &Neo4jStore{
		driver: driver,
		logger: logger.Get(),
	}
}

// Connect builds a driver from connection settings and verifies connectivity
func Connect(ctx context.Context, uri, user, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewStoreUnavailable("connect", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewStoreUnavailable("verify connectivity", err)
	}
	return NewNeo4jStore(driver), nil
}

// Close closes the underlying driver
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// UpsertNode merges the node by (label, key) and applies props
func (s *Neo4jStore) UpsertNode(ctx context.Context, kind NodeKind, key string, props map[string]any) error {
	if !identifierPattern.MatchString(string(kind)) {
		return apperrors.NewMalformedInput(fmt.Sprintf("invalid node kind: %s", kind))
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MERGE (n:%s {key: $key})
		SET n += $props
	`, kind)

	_, err := session.Run(ctx, query, map[string]interface{}{
		"key":   key,
		"props": props,
	})
	if err != nil {
		return apperrors.NewStoreUnavailable("upsert node", err)
	}

	s.logger.Debug("Node upserted",
		zap.String("kind", string(kind)),
		zap.String("key", key),
	)
	return nil
}

// UpsertEdge merges the edge by (kind, from, to) and applies props.
// Fails with entity-not-found when either endpoint is absent.
func (s *Neo4jStore) UpsertEdge(ctx context.Context, kind string, from, to NodeRef, props map[string]any) error {
	if !identifierPattern.MatchString(kind) {
		return apperrors.NewMalformedInput(fmt.Sprintf("invalid relationship kind: %s", kind))
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (a:%s {key: $fromKey})
		MATCH (b:%s {key: $toKey})
		MERGE (a)-[r:%s]->(b)
		SET r += $props
		RETURN type(r) as kind
	`, from.Kind, to.Kind, kind)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"fromKey": from.Key,
		"toKey":   to.Key,
		"props":   props,
	})
	if err != nil {
		return apperrors.NewStoreUnavailable("upsert edge", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return apperrors.NewStoreUnavailable("upsert edge", err)
		}
		// No row means one of the MATCHes found nothing
		if _, err := s.GetNode(ctx, from.Kind, from.Key); err != nil {
			return err
		}
		return apperrors.NewEntityNotFound(string(to.Kind), to.Key)
	}
	return nil
}

// GetNode fetches a node snapshot by label and key
func (s *Neo4jStore) GetNode(ctx context.Context, kind NodeKind, key string) (*Node, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (n:%s {key: $key})
		RETURN properties(n) as props
	`, kind)

	result, err := session.Run(ctx, query, map[string]interface{}{"key": key})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable("get node", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.NewStoreUnavailable("get node", err)
		}
		return nil, apperrors.NewEntityNotFound(string(kind), key)
	}
	return nodeFromRecord(kind, key, result.Record()), nil
}

// NodesByProperty returns nodes whose property equals value, ordered by
// creation time then key so results are deterministic for a fixed graph
func (s *Neo4jStore) NodesByProperty(ctx context.Context, kind NodeKind, prop string, value any) ([]*Node, error) {
	if !identifierPattern.MatchString(prop) {
		return nil, apperrors.NewMalformedInput(fmt.Sprintf("invalid property name: %s", prop))
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (n:%s)
		WHERE n.%s = $value
		RETURN n.key as key, properties(n) as props
		ORDER BY n.created, n.key
	`, kind, prop)

	result, err := session.Run(ctx, query, map[string]interface{}{"value": value})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable("nodes by property", err)
	}

	var nodes []*Node
	for result.Next(ctx) {
		record := result.Record()
		key, _ := record.Get("key")
		keyStr, _ := key.(string)
		nodes = append(nodes, nodeFromRecord(kind, keyStr, record))
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailable("nodes by property", err)
	}
	return nodes, nil
}

// Edges returns incident edges, ordered by target key for determinism
func (s *Neo4jStore) Edges(ctx context.Context, ref NodeRef, dir Direction, kinds []string) ([]*Edge, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	var edges []*Edge
	if dir == Outgoing || dir == Both {
		out, err := s.runEdgeQuery(ctx, session, ref, true)
		if err != nil {
			return nil, err
		}
		edges = append(edges, out...)
	}
	if dir == Incoming || dir == Both {
		in, err := s.runEdgeQuery(ctx, session, ref, false)
		if err != nil {
			return nil, err
		}
		edges = append(edges, in...)
	}

	if len(kinds) == 0 {
		return edges, nil
	}
	var filtered []*Edge
	for _, edge := range edges {
		if containsKind(kinds, edge.Kind) {
			filtered = append(filtered, edge)
		}
	}
	return filtered, nil
}

func (s *Neo4jStore) runEdgeQuery(ctx context.Context, session neo4j.SessionWithContext, ref NodeRef, outgoing bool) ([]*Edge, error) {
	arrow := `(n)-[r]->(m)`
	if !outgoing {
		arrow = `(n)<-[r]-(m)`
	}
	query := fmt.Sprintf(`
		MATCH (n:%s {key: $key})
		MATCH %s
		RETURN type(r) as kind, labels(m)[0] as other_kind, m.key as other_key, properties(r) as props
		ORDER BY type(r), m.key
	`, ref.Kind, arrow)

	result, err := session.Run(ctx, query, map[string]interface{}{"key": ref.Key})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable("edges", err)
	}

	var edges []*Edge
	for result.Next(ctx) {
		record := result.Record()
		kind := getStringFromRecord(record, "kind")
		other := NodeRef{
			Kind: NodeKind(getStringFromRecord(record, "other_kind")),
			Key:  getStringFromRecord(record, "other_key"),
		}
		edge := &Edge{Kind: kind, Props: getMapFromRecord(record, "props")}
		if outgoing {
			edge.From, edge.To = ref, other
		} else {
			edge.From, edge.To = other, ref
		}
		edges = append(edges, edge)
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailable("edges", err)
	}
	return edges, nil
}

func nodeFromRecord(kind NodeKind, key string, record *neo4j.Record) *Node {
	return &Node{Kind: kind, Key: key, Props: getMapFromRecord(record, "props")}
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getMapFromRecord(record *neo4j.Record, key string) map[string]any {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return map[string]any{}
	}
	if m, ok := val.(map[string]interface{}); ok {
		return m
	}
	return map[string]any{}
}
