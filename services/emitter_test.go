package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biorel/graph"
	"biorel/mapping"
	"biorel/models"
)

type fakeNames struct {
	names map[string]string
	err   error
	calls int
}

func (f *fakeNames) Mnemonic(_ context.Context, accession string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.names[accession], nil
}

func newTestEmitter(names NameResolver) (*Emitter, *graph.Graph) {
	g := graph.New("test")
	return &Emitter{
		Sink:       g,
		Names:      names,
		Classifier: mapping.IntAct,
		Source:     "intact",
		Evidence:   "From IntAct",
		Logger:     zap.NewNop(),
	}, g
}

var testNames = &fakeNames{names: map[string]string{"P1": "ONE_HUMAN", "P2": "TWO_HUMAN"}}

func TestEmitUbiquitinationReaction(t *testing.T) {
	e, g := newTestEmitter(testNames)

	n, err := e.Emit(context.Background(), models.Interaction{
		Source: "P1", Target: "P2",
		Label:     `psi-mi:"MI:0220"(ubiquitination reaction)`,
		PubMedIDs: []string{"111"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, g.Edges(), 1)
	edge := g.Edges()[0]
	assert.Equal(t, graph.Increases, edge.Relation)
	assert.Equal(t, "111", edge.Citation)
	assert.Equal(t, "From IntAct", edge.Evidence)
	assert.Equal(t, []graph.ProteinModification{{Name: "Ub"}}, edge.Target.Variants)
	assert.Equal(t, "ONE_HUMAN", edge.Source.Name)
}

func TestEmitPhysicalAssociationPerPublication(t *testing.T) {
	e, g := newTestEmitter(testNames)

	n, err := e.Emit(context.Background(), models.Interaction{
		Source: "P1", Target: "P2",
		Label:     `psi-mi:"MI:0915"(physical association)`,
		PubMedIDs: []string{"1", "2", "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, map[graph.Relation]int{graph.Association: 3}, g.CountRelations())
	for _, edge := range g.Edges() {
		assert.Empty(t, edge.Target.Variants)
	}
}

func TestEmitUnrecognizedType(t *testing.T) {
	names := &fakeNames{}
	e, g := newTestEmitter(names)

	n, err := e.Emit(context.Background(), models.Interaction{
		Source: "P1", Target: "P2", Label: "not-a-real-type", PubMedIDs: []string{"1"},
	})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, g.NumberOfEdges())
	assert.Zero(t, names.calls)
}

func TestEmitWithoutPublication(t *testing.T) {
	e, g := newTestEmitter(testNames)

	n, err := e.Emit(context.Background(), models.Interaction{
		Source: "P1", Target: "P2", Label: "physical association",
	})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, g.NumberOfEdges())
}

func TestEmitSpecialCases(t *testing.T) {
	tests := []struct {
		label    string
		relation graph.Relation
		check    func(t *testing.T, e graph.Edge)
	}{
		{"deubiquitination", graph.Decreases, func(t *testing.T, e graph.Edge) {
			assert.Equal(t, []graph.ProteinModification{{Name: "Ub"}}, e.Target.Variants)
		}},
		{"degradation", graph.Decreases, func(t *testing.T, e graph.Edge) {
			assert.Empty(t, e.Target.Variants)
		}},
		{"activates", graph.Increases, func(t *testing.T, e graph.Edge) {
			assert.Equal(t, graph.Activity, e.ObjectModifier)
		}},
		{"co-expression", graph.Correlation, func(t *testing.T, e graph.Edge) {
			assert.Equal(t, graph.RnaFunction, e.Source.Function)
			assert.Equal(t, graph.RnaFunction, e.Target.Function)
			assert.Equal(t, map[string][]string{"cell_line": {"HEK2"}}, e.Annotations)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			e, g := newTestEmitter(testNames)
			n, err := e.Emit(context.Background(), models.Interaction{
				Source: "P1", Target: "P2", Label: tt.label, PubMedIDs: []string{"42"},
			})
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			require.Len(t, g.Edges(), 1)
			assert.Equal(t, tt.relation, g.Edges()[0].Relation)
			tt.check(t, g.Edges()[0])
		})
	}
}

func TestEmitHasComponentAsAssociation(t *testing.T) {
	e, g := newTestEmitter(testNames)
	_, err := e.Emit(context.Background(), models.Interaction{
		Source: "P1", Target: "P2", Label: "disulfide bond", PubMedIDs: []string{"7"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[graph.Relation]int{graph.Association: 1}, g.CountRelations())
}

func TestEmitPropagatesResolverErrors(t *testing.T) {
	boom := errors.New("uniprot down")
	e, g := newTestEmitter(&fakeNames{err: boom})

	_, err := e.Emit(context.Background(), models.Interaction{
		Source: "P1", Target: "P2", Label: "physical association", PubMedIDs: []string{"1"},
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, g.NumberOfEdges())
}

func TestEmitCountsOnlyStoredEdges(t *testing.T) {
	e, g := newTestEmitter(testNames)
	rec := models.Interaction{
		Source: "P1", Target: "P2", Label: "physical association", PubMedIDs: []string{"1", "2"},
	}

	n, err := e.Emit(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec.PubMedIDs = []string{"2", "3"}
	n, err = e.Emit(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, g.NumberOfEdges())
}

func TestEmitActivationNextToAbundanceEdge(t *testing.T) {
	e, g := newTestEmitter(testNames)
	ctx := context.Background()

	n, err := e.Emit(ctx, models.Interaction{Source: "P1", Target: "P2", Label: "activation", PubMedIDs: []string{"42"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = e.Emit(ctx, models.Interaction{Source: "P1", Target: "P2", Label: "sumoylation reaction", PubMedIDs: []string{"42"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Equal(t, 2, g.NumberOfEdges())
	assert.Equal(t, graph.Activity, g.Edges()[0].ObjectModifier)
	assert.Empty(t, g.Edges()[1].ObjectModifier)
}
