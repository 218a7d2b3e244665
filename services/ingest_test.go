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

type fakeProvider struct {
	records []models.Interaction
	err     error
}

func (p *fakeProvider) Name() string                    { return "fake" }
func (p *fakeProvider) Evidence() string                { return "From Fake" }
func (p *fakeProvider) Classifier() *mapping.Classifier { return mapping.BioGRID }

func (p *fakeProvider) Records(_ context.Context, fn func(models.Interaction) error) error {
	for _, r := range p.records {
		if err := fn(r); err != nil {
			return err
		}
	}
	return p.err
}

func graphSink(source, runID string) (graph.Sink, error) {
	return graph.New(source + "-" + runID), nil
}

func TestIngestRun(t *testing.T) {
	svc := NewIngestService(testNames, graphSink, zap.NewNop())
	p := &fakeProvider{records: []models.Interaction{
		{Source: "P1", Target: "P2", Label: "physical association", PubMedIDs: []string{"1", "2"}},
		{Source: "P1", Target: "P2", Label: "not a real type", PubMedIDs: []string{"3"}},
	}}

	sink, res, err := svc.Run(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "fake", res.Source)
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 2, res.Edges)

	g, ok := sink.(*graph.Graph)
	require.True(t, ok)
	for _, e := range g.Edges() {
		assert.Equal(t, "From Fake", e.Evidence)
	}
}

func TestIngestRunProviderError(t *testing.T) {
	boom := errors.New("download failed")
	svc := NewIngestService(testNames, graphSink, zap.NewNop())

	_, res, err := svc.Run(context.Background(), &fakeProvider{err: boom})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, res)
	assert.Zero(t, res.Edges)
}

func TestIngestRunCountsStoredEdges(t *testing.T) {
	svc := NewIngestService(testNames, graphSink, zap.NewNop())
	rec := models.Interaction{Source: "P1", Target: "P2", Label: "physical association", PubMedIDs: []string{"1"}}

	_, res, err := svc.Run(context.Background(), &fakeProvider{records: []models.Interaction{rec, rec, rec}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 1, res.Edges)
}
