package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"biorel/graph"
	"biorel/mapping"
	"biorel/models"
)

// UniProtNamespace is the namespace of every node the emitter creates.
const UniProtNamespace = "uniprot"

// NameResolver returns the display name of a protein accession, e.g. *uniprot.Fetcher.
type NameResolver interface {
	Mnemonic(ctx context.Context, accession string) (string, error)
}

// Emitter turns interaction records into cited edges.
type Emitter struct {
	Sink       graph.Sink
	Names      NameResolver
	Classifier *mapping.Classifier
	Source     string // dataset name, used in metrics
	Evidence   string
	Logger     *zap.Logger
}

// Emit adds one edge per PubMed id of rec and returns how many the sink stored.
// Edges the sink already held are not counted. Records with an unrecognized interaction
// type or without a PubMed id add nothing.
func (e *Emitter) Emit(ctx context.Context, rec models.Interaction) (int, error) {
	override, special := mapping.Special(rec.Label)
	category := e.Classifier.Classify(rec.Label)
	if !special && category == mapping.Unrecognized {
		e.skip(rec, "unrecognized")
		return 0, nil
	}
	if len(rec.PubMedIDs) == 0 {
		e.skip(rec, "no_citation")
		return 0, nil
	}

	sourceName, err := e.Names.Mnemonic(ctx, rec.Source)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", rec.Source, err)
	}
	targetName, err := e.Names.Mnemonic(ctx, rec.Target)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", rec.Target, err)
	}
	source := graph.Protein(UniProtNamespace, rec.Source, sourceName)
	target := graph.Protein(UniProtNamespace, rec.Target, targetName)

	n := 0
	for _, pmid := range rec.PubMedIDs {
		var (
			edge   graph.Edge
			stored bool
		)
		if special {
			edge, err = e.specialEdge(override, source, target, pmid)
		} else {
			edge, err = e.categoryEdge(category, rec.Label, source, target, pmid)
		}
		if err != nil {
			return n, err
		}
		stored, err = e.Sink.AddEdge(ctx, edge)
		if err != nil {
			return n, err
		}
		if !stored {
			edgesDuplicate.WithLabelValues(e.Source, string(edge.Relation)).Inc()
			continue
		}
		edgesEmitted.WithLabelValues(e.Source, string(edge.Relation)).Inc()
		n++
	}
	return n, nil
}

func (e *Emitter) specialEdge(o mapping.Override, source, target graph.Node, pmid string) (graph.Edge, error) {
	if o.Correlation {
		src := graph.Rna(source.Namespace, source.Identifier, source.Name)
		tgt := graph.Rna(target.Namespace, target.Identifier, target.Name)
		return graph.NewEdge(graph.Correlation, src, tgt, pmid, e.Evidence, graph.WithAnnotations(o.Annotations))
	}

	var opts []graph.EdgeOption
	if o.Modification != "" {
		target = target.WithVariants(graph.ProteinModification{Name: o.Modification})
	}
	if o.Activity {
		opts = append(opts, graph.WithObjectModifier(graph.Activity))
	}
	if o.Category == mapping.Decreases {
		return graph.NewEdge(graph.Decreases, source, target, pmid, e.Evidence, opts...)
	}
	return graph.NewEdge(graph.Increases, source, target, pmid, e.Evidence, opts...)
}

func (e *Emitter) categoryEdge(c mapping.Category, label string, source, target graph.Node, pmid string) (graph.Edge, error) {
	if mod := e.Classifier.Modification(label); mod != "" {
		target = target.WithVariants(graph.ProteinModification{Name: mod})
	}
	switch c {
	case mapping.Increases:
		return graph.NewEdge(graph.Increases, source, target, pmid, e.Evidence)
	case mapping.Decreases:
		return graph.NewEdge(graph.Decreases, source, target, pmid, e.Evidence)
	default:
		// hasComponent has no protein-level BEL counterpart and is emitted as association.
		return graph.NewEdge(graph.Association, source, target, pmid, e.Evidence)
	}
}

func (e *Emitter) skip(rec models.Interaction, reason string) {
	recordsSkipped.WithLabelValues(e.Source, reason).Inc()
	e.Logger.Debug("Skipping interaction",
		zap.String("reason", reason),
		zap.String("source", rec.Source),
		zap.String("target", rec.Target),
		zap.String("label", rec.Label))
}
