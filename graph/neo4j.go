package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// cypherWriter runs one write query and reports how many relationships it created.
type cypherWriter interface {
	Write(ctx context.Context, query string, params map[string]any) (int, error)
	Close(ctx context.Context) error
}

type driverWriter struct {
	driver neo4j.DriverWithContext
	dbName string
}

func (w *driverWriter) Write(ctx context.Context, query string, params map[string]any) (int, error) {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: w.dbName})
	defer session.Close(ctx)

	created, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return 0, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return 0, err
		}
		return summary.Counters().RelationshipsCreated(), nil
	})
	if err != nil {
		return 0, err
	}
	return created.(int), nil
}

func (w *driverWriter) Close(ctx context.Context) error {
	return w.driver.Close(ctx)
}

// Neo4jSink merges edges into a Neo4j database. Nodes are keyed by their BEL term,
// relationships by citation and object modifier.
type Neo4jSink struct {
	writer         cypherWriter
	SourceDatabase string
}

// NewNeo4jSink connects to uri and verifies connectivity.
func NewNeo4jSink(uri, username, password, dbName, sourceDatabase string) (*Neo4jSink, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &Neo4jSink{writer: &driverWriter{driver: driver, dbName: dbName}, SourceDatabase: sourceDatabase}, nil
}

func (s *Neo4jSink) Close(ctx context.Context) error {
	return s.writer.Close(ctx)
}

// relationType turns a BEL relation into a relationship type, e.g. INCREASES.
func relationType(r Relation) string {
	return strings.ToUpper(string(r))
}

// mergeEdgeQuery returns the MERGE statement and parameters of e.
func mergeEdgeQuery(e Edge, sourceDatabase string) (string, map[string]any) {
	annotations := make([]string, 0, len(e.Annotations))
	for k, values := range e.Annotations {
		for _, v := range values {
			annotations = append(annotations, k+"="+v)
		}
	}
	sort.Strings(annotations)

	// Relationship types cannot be parameterized; relationType only yields the fixed Relation set.
	query := fmt.Sprintf(`
		MERGE (s:BELNode {bel: $source})
		  ON CREATE SET s.function = $source_function, s.namespace = $source_namespace, s.identifier = $source_identifier, s.name = $source_name
		MERGE (t:BELNode {bel: $target})
		  ON CREATE SET t.function = $target_function, t.namespace = $target_namespace, t.identifier = $target_identifier, t.name = $target_name
		MERGE (s)-[r:%s {citation: $citation, object_modifier: $object_modifier}]->(t)
		SET r.evidence = $evidence,
			r.annotations = $annotations,
			r.source_database = $source_database
	`, relationType(e.Relation))

	params := map[string]any{
		"source":            e.Source.String(),
		"source_function":   string(e.Source.Function),
		"source_namespace":  e.Source.Namespace,
		"source_identifier": e.Source.Identifier,
		"source_name":       e.Source.Name,
		"target":            e.Target.String(),
		"target_function":   string(e.Target.Function),
		"target_namespace":  e.Target.Namespace,
		"target_identifier": e.Target.Identifier,
		"target_name":       e.Target.Name,
		"citation":          e.Citation,
		"evidence":          e.Evidence,
		"object_modifier":   e.ObjectModifier,
		"annotations":       annotations,
		"source_database":   sourceDatabase,
	}
	return query, params
}

func (s *Neo4jSink) AddEdge(ctx context.Context, e Edge) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	query, params := mergeEdgeQuery(e, s.SourceDatabase)
	created, err := s.writer.Write(ctx, query, params)
	if err != nil {
		return false, fmt.Errorf("merge edge %s: %w", e, err)
	}
	return created > 0, nil
}
