// Package intact reads the IntAct PSI-MITAB export.
package intact

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"biorel/config"
	"biorel/mapping"
	"biorel/models"
	"biorel/providers"
	"biorel/providers/mitab"
	"biorel/storage"
)

const (
	ModuleName = "intact"
	Evidence   = "From IntAct"

	// Member of the intact.zip archive holding the tab-separated export.
	archiveMember = "intact.txt"
)

// Literal column names of the IntAct export.
const (
	ColumnInteractorA      = "#ID(s) interactor A"
	ColumnInteractorB      = "ID(s) interactor B"
	ColumnInteractionTypes = "Interaction type(s)"
	ColumnPublicationIDs   = "Publication Identifier(s)"
)

const uniprotKB = "uniprotkb"

// Fetcher implements providers.Provider for IntAct.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Cache  *storage.Cache
}

// NewFetcher creates a new IntAct fetcher.
func NewFetcher(cfg *config.Config, cache *storage.Cache, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Cache: cache}
}

func (f *Fetcher) Name() string { return ModuleName }

func (f *Fetcher) Evidence() string { return Evidence }

func (f *Fetcher) Classifier() *mapping.Classifier { return mapping.IntAct }

// Records downloads intact.zip into the cache and streams its interactions.
func (f *Fetcher) Records(ctx context.Context, fn func(models.Interaction) error) error {
	path, err := f.Cache.EnsurePath(ctx, ModuleName, f.Config.IntActURL)
	if err != nil {
		return fmt.Errorf("load intact file: %w", err)
	}
	rc, err := storage.OpenDataset(path, archiveMember)
	if err != nil {
		return fmt.Errorf("open intact file: %w", err)
	}
	defer rc.Close()

	stats, err := Parse(ctx, rc, fn)
	f.Logger.Info("Read IntAct export",
		zap.String("path", path),
		zap.Int("rows", stats.Rows),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped", stats.Dropped))
	return err
}

// Parse reads an IntAct export from r. Rows without interactor B, with non-UniProt
// interactors or without an interaction type are dropped.
func Parse(ctx context.Context, r io.Reader, fn func(models.Interaction) error) (providers.Stats, error) {
	var stats providers.Stats

	rd, err := mitab.NewReader(r)
	if err != nil {
		return stats, err
	}
	if err := rd.Require(ColumnInteractorA, ColumnInteractorB, ColumnInteractionTypes, ColumnPublicationIDs); err != nil {
		return stats, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", rd.Line(), err)
		}
		stats.Rows++

		rec, ok := interaction(row)
		if !ok {
			stats.Dropped++
			continue
		}
		stats.Kept++
		if err := fn(rec); err != nil {
			return stats, err
		}
	}
}

func interaction(row mitab.Row) (models.Interaction, bool) {
	b := row.Get(ColumnInteractorB)
	if b == "" || b == mitab.Missing {
		return models.Interaction{}, false
	}
	source := mitab.FirstID(row.Get(ColumnInteractorA), uniprotKB)
	target := mitab.FirstID(b, uniprotKB)
	if source == "" || target == "" {
		return models.Interaction{}, false
	}
	label := mitab.FirstLabel(row.Get(ColumnInteractionTypes))
	if label == "" {
		return models.Interaction{}, false
	}
	return models.Interaction{
		Source:    source,
		Target:    target,
		Label:     label,
		PubMedIDs: mitab.PubMedIDs(row.Get(ColumnPublicationIDs)),
	}, true
}
