package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"biorel/graph"
	"biorel/models"
	"biorel/providers"
)

// SinkFactory returns the sink edges of one run are written to.
type SinkFactory func(source, runID string) (graph.Sink, error)

// IngestService runs providers through the emitter into a graph sink.
type IngestService struct {
	Names   NameResolver
	NewSink SinkFactory
	Logger  *zap.Logger
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	RunID    string        `json:"run_id"`
	Source   string        `json:"source"`
	Records  int           `json:"records"`
	Edges    int           `json:"edges"` // edges the sink stored; duplicates excluded
	Duration time.Duration `json:"duration"`
}

// NewIngestService creates an ingestion service.
func NewIngestService(names NameResolver, newSink SinkFactory, logger *zap.Logger) *IngestService {
	return &IngestService{Names: names, NewSink: newSink, Logger: logger}
}

// Run streams every record of p into a fresh sink and returns the sink with the result.
func (s *IngestService) Run(ctx context.Context, p providers.Provider) (graph.Sink, *IngestResult, error) {
	res := &IngestResult{RunID: uuid.NewString(), Source: p.Name()}
	log := s.Logger.With(zap.String("source", p.Name()), zap.String("run_id", res.RunID))

	sink, err := s.NewSink(p.Name(), res.RunID)
	if err != nil {
		return nil, nil, fmt.Errorf("open sink: %w", err)
	}

	emitter := &Emitter{
		Sink:       sink,
		Names:      s.Names,
		Classifier: p.Classifier(),
		Source:     p.Name(),
		Evidence:   p.Evidence(),
		Logger:     log,
	}

	start := time.Now()
	log.Info("Starting ingestion")
	err = p.Records(ctx, func(rec models.Interaction) error {
		res.Records++
		n, err := emitter.Emit(ctx, rec)
		res.Edges += n
		return err
	})
	res.Duration = time.Since(start)
	if err != nil {
		return sink, res, fmt.Errorf("ingest %s: %w", p.Name(), err)
	}

	log.Info("Finished ingestion",
		zap.Int("records", res.Records),
		zap.Int("edges", res.Edges),
		zap.Duration("duration", res.Duration))
	return sink, res, nil
}
