package graph

import (
	"errors"
	"fmt"
)

// Relation is a BEL relationship.
type Relation string

const (
	Increases   Relation = "increases"
	Decreases   Relation = "decreases"
	Association Relation = "association"
	Correlation Relation = "correlation"
)

// Activity is the object modifier for edges that change a target's activity.
const Activity = "act"

var (
	ErrMissingCitation = errors.New("graph: edge has no citation")
	ErrMissingEvidence = errors.New("graph: edge has no evidence")
)

// Edge is a cited relation between two nodes.
type Edge struct {
	Source   Node
	Target   Node
	Relation Relation
	Citation string // PubMed identifier
	Evidence string

	ObjectModifier string
	Annotations    map[string][]string
}

// Validate enforces that every edge carries a citation and an evidence string.
func (e Edge) Validate() error {
	if e.Citation == "" {
		return fmt.Errorf("%w: %s", ErrMissingCitation, e)
	}
	if e.Evidence == "" {
		return fmt.Errorf("%w: %s", ErrMissingEvidence, e)
	}
	if e.Relation == "" {
		return fmt.Errorf("graph: edge has no relation: %s", e)
	}
	return nil
}

// TargetTerm renders the target, wrapped in act() when the edge modifies activity.
func (e Edge) TargetTerm() string {
	if e.ObjectModifier == Activity {
		return fmt.Sprintf("act(%s)", e.Target)
	}
	return e.Target.String()
}

func (e Edge) String() string {
	return fmt.Sprintf("%s %s %s", e.Source, e.Relation, e.TargetTerm())
}
