package graph

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"biorel/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "graph.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Edge{}))
	return db
}

func TestGormSinkIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sink := NewGormSink(db, "intact", "run-1")

	src := Protein("uniprot", "P1", "A")
	tgt := Protein("uniprot", "P2", "B").WithVariants(ProteinModification{Name: "Ub"})

	require.NoError(t, AddIncreases(ctx, sink, src, tgt, "111", "From IntAct"))
	require.NoError(t, AddIncreases(ctx, sink, src, tgt, "111", "From IntAct"))
	require.NoError(t, AddIncreases(ctx, sink, src, tgt, "112", "From IntAct"))
	require.NoError(t, AddCorrelation(ctx, sink, Rna("uniprot", "P1", "A"), Rna("uniprot", "P2", "B"), "113", "From IntAct",
		WithAnnotations(map[string][]string{"cell_line": {"HEK2"}})))

	var edges []models.Edge
	require.NoError(t, db.Order("id").Find(&edges).Error)
	require.Len(t, edges, 3)

	assert.Equal(t, "p(uniprot:P2 ! B, pmod(Ub))", edges[0].Target)
	assert.Equal(t, "increases", edges[0].Relation)
	assert.Equal(t, "intact", edges[0].SourceDatabase)
	assert.Equal(t, "run-1", edges[0].RunID)

	var annotations map[string][]string
	require.NoError(t, json.Unmarshal(edges[2].Annotations, &annotations))
	assert.Equal(t, []string{"HEK2"}, annotations["cell_line"])
}

func TestGormSinkRejectsUncitedEdges(t *testing.T) {
	sink := NewGormSink(openTestDB(t), "biogrid", "run-1")
	_, err := sink.AddEdge(context.Background(), Edge{
		Source:   Protein("uniprot", "P1", ""),
		Target:   Protein("uniprot", "P2", ""),
		Relation: Association,
		Evidence: "From BioGRID",
	})
	assert.ErrorIs(t, err, ErrMissingCitation)
}

func TestGormSinkKeepsActivityEdgeApart(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sink := NewGormSink(db, "biogrid", "run-1")

	src := Protein("uniprot", "P1", "A")
	tgt := Protein("uniprot", "P2", "B")
	plain, err := NewEdge(Increases, src, tgt, "42", "From BioGRID")
	require.NoError(t, err)
	active, err := NewEdge(Increases, src, tgt, "42", "From BioGRID", WithObjectModifier(Activity))
	require.NoError(t, err)

	stored, err := sink.AddEdge(ctx, plain)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = sink.AddEdge(ctx, active)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = sink.AddEdge(ctx, active)
	require.NoError(t, err)
	assert.False(t, stored)

	var modifiers []string
	require.NoError(t, db.Model(&models.Edge{}).Order("id").Pluck("object_modifier", &modifiers).Error)
	assert.Equal(t, []string{"", "act"}, modifiers)

	g := New("memory")
	for _, e := range []Edge{plain, active, active} {
		_, err := g.AddEdge(ctx, e)
		require.NoError(t, err)
	}
	assert.Equal(t, len(modifiers), g.NumberOfEdges())
}
