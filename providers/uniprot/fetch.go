// Package uniprot resolves protein mnemonics and streams reviewed proteomes from the UniProt REST API.
package uniprot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"biorel/config"
	"biorel/models"
	"biorel/providers/mitab"
)

// ErrNotFound is returned when UniProt knows no entry for an accession.
var ErrNotFound = errors.New("uniprot entry not found")

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Columns of the tsv responses for fields=accession,id.
const (
	ColumnAccession = "Entry"
	ColumnMnemonic  = "Entry Name"
)

// Fetcher talks to the UniProt REST API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Client *http.Client
	Cache  Cache
}

// NewFetcher creates a UniProt fetcher. A nil cache falls back to a MemoryCache.
func NewFetcher(cfg *config.Config, cache Cache, logger *zap.Logger) *Fetcher {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Fetcher{Config: cfg, Logger: logger, Client: httpClient, Cache: cache}
}

// Mnemonic returns the entry name (e.g. "TP53_HUMAN") of accession.
func (f *Fetcher) Mnemonic(ctx context.Context, accession string) (string, error) {
	if v, ok, err := f.Cache.Get(ctx, accession); err != nil {
		f.Logger.Warn("Mnemonic cache lookup failed", zap.String("accession", accession), zap.Error(err))
	} else if ok {
		return v, nil
	}

	q := url.Values{}
	q.Set("query", "accession:"+accession)
	q.Set("fields", "accession,id")
	q.Set("format", "tsv")
	q.Set("size", "1")

	var mnemonic string
	err := f.getTSV(ctx, "/uniprotkb/search?"+q.Encode(), func(row mitab.Row) error {
		if mnemonic == "" {
			mnemonic = row.Get(ColumnMnemonic)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", accession, err)
	}
	if mnemonic == "" {
		return "", fmt.Errorf("lookup %s: %w", accession, ErrNotFound)
	}

	if err := f.Cache.Set(ctx, accession, mnemonic); err != nil {
		f.Logger.Warn("Mnemonic cache store failed", zap.String("accession", accession), zap.Error(err))
	}
	return mnemonic, nil
}

// Stream calls fn for every reviewed protein of taxonID.
func (f *Fetcher) Stream(ctx context.Context, taxonID int, fn func(models.Protein) error) error {
	q := url.Values{}
	q.Set("query", fmt.Sprintf("reviewed:true AND organism_id:%d", taxonID))
	q.Set("fields", "accession,id")
	q.Set("format", "tsv")

	n := 0
	err := f.getTSV(ctx, "/uniprotkb/stream?"+q.Encode(), func(row mitab.Row) error {
		accession := row.Get(ColumnAccession)
		if accession == "" {
			return nil
		}
		n++
		return fn(models.Protein{
			Accession: accession,
			Mnemonic:  row.Get(ColumnMnemonic),
			TaxonID:   taxonID,
			Reviewed:  true,
		})
	})
	if err != nil {
		return fmt.Errorf("stream taxon %d: %w", taxonID, err)
	}
	f.Logger.Info("Streamed UniProt proteome", zap.Int("taxon_id", taxonID), zap.Int("proteins", n))
	return nil
}

func (f *Fetcher) getTSV(ctx context.Context, path string, fn func(mitab.Row) error) error {
	endpoint := strings.TrimRight(f.Config.UniProtBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	rd, err := mitab.NewReader(resp.Body)
	if errors.Is(err, mitab.ErrEmptyInput) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := rd.Require(ColumnAccession, ColumnMnemonic); err != nil {
		return err
	}
	for {
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
