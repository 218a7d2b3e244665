// Package biogrid reads the BioGRID PSI-MITAB release archive.
package biogrid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"biorel/config"
	"biorel/mapping"
	"biorel/models"
	"biorel/providers"
	"biorel/providers/mitab"
	"biorel/storage"
)

const (
	ModuleName = "biogrid"
	Evidence   = "From BioGRID"
)

// Literal column names of the BioGRID MITAB export.
const (
	ColumnAltIDsA          = "Alt IDs Interactor A"
	ColumnAltIDsB          = "Alt IDs Interactor B"
	ColumnInteractionTypes = "Interaction Types"
	ColumnPublicationIDs   = "Publication Identifiers"
)

// UniProt databases in the alt id columns, most trusted first.
var uniprotDatabases = []string{"uniprot/swiss-prot", "uniprot/trembl"}

// URL returns the release archive URL of version.
func URL(baseURL, version string) string {
	return fmt.Sprintf("%s/BIOGRID-%s/BIOGRID-ALL-%s.mitab.zip", strings.TrimRight(baseURL, "/"), version, version)
}

// ArchiveMember returns the name of the MITAB file inside the release archive.
func ArchiveMember(version string) string {
	return fmt.Sprintf("BIOGRID-ALL-%s.mitab.txt", version)
}

// Fetcher implements providers.Provider for BioGRID.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Cache  *storage.Cache
}

// NewFetcher creates a new BioGRID fetcher.
func NewFetcher(cfg *config.Config, cache *storage.Cache, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Cache: cache}
}

func (f *Fetcher) Name() string { return ModuleName }

func (f *Fetcher) Evidence() string { return Evidence }

func (f *Fetcher) Classifier() *mapping.Classifier { return mapping.BioGRID }

// Records downloads the configured release into the cache and streams its interactions.
func (f *Fetcher) Records(ctx context.Context, fn func(models.Interaction) error) error {
	url := URL(f.Config.BioGRIDBaseURL, f.Config.BioGRIDVersion)
	path, err := f.Cache.EnsurePath(ctx, ModuleName, url)
	if err != nil {
		return fmt.Errorf("load biogrid file: %w", err)
	}
	rc, err := storage.OpenDataset(path, ArchiveMember(f.Config.BioGRIDVersion))
	if err != nil {
		return fmt.Errorf("open biogrid file: %w", err)
	}
	defer rc.Close()

	stats, err := Parse(ctx, rc, fn)
	f.Logger.Info("Read BioGRID release",
		zap.String("version", f.Config.BioGRIDVersion),
		zap.Int("rows", stats.Rows),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped", stats.Dropped))
	return err
}

// Parse reads a BioGRID MITAB file from r. Interactors are identified by the UniProt
// accession in their alt ids; rows where either side has none are dropped.
func Parse(ctx context.Context, r io.Reader, fn func(models.Interaction) error) (providers.Stats, error) {
	var stats providers.Stats

	rd, err := mitab.NewReader(r)
	if err != nil {
		return stats, err
	}
	if err := rd.Require(ColumnAltIDsA, ColumnAltIDsB, ColumnInteractionTypes, ColumnPublicationIDs); err != nil {
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

		source := mitab.FirstID(row.Get(ColumnAltIDsA), uniprotDatabases...)
		target := mitab.FirstID(row.Get(ColumnAltIDsB), uniprotDatabases...)
		label := mitab.FirstLabel(row.Get(ColumnInteractionTypes))
		if source == "" || target == "" || label == "" {
			stats.Dropped++
			continue
		}
		stats.Kept++

		err = fn(models.Interaction{
			Source:    source,
			Target:    target,
			Label:     label,
			PubMedIDs: mitab.PubMedIDs(row.Get(ColumnPublicationIDs)),
		})
		if err != nil {
			return stats, err
		}
	}
}
