package graph

import "context"

// Sink receives edges. Implementations must reject edges failing Validate.
// AddEdge reports whether the edge was stored; false means an identical edge
// (same source, relation, object modifier, target and citation) was already present.
type Sink interface {
	AddEdge(ctx context.Context, e Edge) (bool, error)
}

// EdgeOption adjusts an edge before insertion.
type EdgeOption func(*Edge)

// WithObjectModifier sets the object modifier, e.g. Activity.
func WithObjectModifier(modifier string) EdgeOption {
	return func(e *Edge) { e.ObjectModifier = modifier }
}

// WithAnnotations attaches an annotation block.
func WithAnnotations(annotations map[string][]string) EdgeOption {
	return func(e *Edge) { e.Annotations = annotations }
}

// NewEdge builds a validated edge.
func NewEdge(relation Relation, source, target Node, citation, evidence string, opts ...EdgeOption) (Edge, error) {
	e := Edge{Source: source, Target: target, Relation: relation, Citation: citation, Evidence: evidence}
	for _, opt := range opts {
		opt(&e)
	}
	if err := e.Validate(); err != nil {
		return Edge{}, err
	}
	return e, nil
}

func add(ctx context.Context, s Sink, relation Relation, source, target Node, citation, evidence string, opts []EdgeOption) error {
	e, err := NewEdge(relation, source, target, citation, evidence, opts...)
	if err != nil {
		return err
	}
	_, err = s.AddEdge(ctx, e)
	return err
}

// AddIncreases inserts source increases target.
func AddIncreases(ctx context.Context, s Sink, source, target Node, citation, evidence string, opts ...EdgeOption) error {
	return add(ctx, s, Increases, source, target, citation, evidence, opts)
}

// AddDecreases inserts source decreases target.
func AddDecreases(ctx context.Context, s Sink, source, target Node, citation, evidence string, opts ...EdgeOption) error {
	return add(ctx, s, Decreases, source, target, citation, evidence, opts)
}

// AddAssociation inserts source association target.
func AddAssociation(ctx context.Context, s Sink, source, target Node, citation, evidence string, opts ...EdgeOption) error {
	return add(ctx, s, Association, source, target, citation, evidence, opts)
}

// AddCorrelation inserts source correlation target.
func AddCorrelation(ctx context.Context, s Sink, source, target Node, citation, evidence string, opts ...EdgeOption) error {
	return add(ctx, s, Correlation, source, target, citation, evidence, opts)
}
