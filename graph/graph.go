package graph

import (
	"context"
	"encoding/json"
	"io"
	"sort"
)

// Graph is an in-memory sink, used for exports and tests.
type Graph struct {
	Name  string
	edges []Edge
	seen  map[string]struct{}
}

// New returns an empty named graph.
func New(name string) *Graph {
	return &Graph{Name: name, seen: make(map[string]struct{})}
}

// AddEdge stores e unless the same edge with the same citation is already present.
func (g *Graph) AddEdge(_ context.Context, e Edge) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	key := e.String() + "|" + e.Citation
	if _, ok := g.seen[key]; ok {
		return false, nil
	}
	g.seen[key] = struct{}{}
	g.edges = append(g.edges, e)
	return true, nil
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// NumberOfEdges returns the number of distinct edges.
func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

// NumberOfNodes returns the number of distinct nodes.
func (g *Graph) NumberOfNodes() int {
	nodes := make(map[string]struct{})
	for _, e := range g.edges {
		nodes[e.Source.String()] = struct{}{}
		nodes[e.Target.String()] = struct{}{}
	}
	return len(nodes)
}

// CountRelations counts edges by relation.
func (g *Graph) CountRelations() map[Relation]int {
	counts := make(map[Relation]int)
	for _, e := range g.edges {
		counts[e.Relation]++
	}
	return counts
}

type edgeLine struct {
	Source         string              `json:"source"`
	Relation       Relation            `json:"relation"`
	Target         string              `json:"target"`
	Citation       string              `json:"citation"`
	Evidence       string              `json:"evidence"`
	ObjectModifier string              `json:"object_modifier,omitempty"`
	Annotations    map[string][]string `json:"annotations,omitempty"`
}

// WriteJSONLines writes one JSON object per edge, sorted by source, relation, target and citation.
func (g *Graph) WriteJSONLines(w io.Writer) error {
	lines := make([]edgeLine, 0, len(g.edges))
	for _, e := range g.edges {
		lines = append(lines, edgeLine{
			Source:         e.Source.String(),
			Relation:       e.Relation,
			Target:         e.Target.String(),
			Citation:       e.Citation,
			Evidence:       e.Evidence,
			ObjectModifier: e.ObjectModifier,
			Annotations:    e.Annotations,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Relation != b.Relation {
			return a.Relation < b.Relation
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Citation < b.Citation
	})
	enc := json.NewEncoder(w)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return err
		}
	}
	return nil
}
