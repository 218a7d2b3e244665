package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biorel/models"
)

// ProteomeStreamer streams the reviewed proteins of a taxon, e.g. *uniprot.Fetcher.
type ProteomeStreamer interface {
	Stream(ctx context.Context, taxonID int, fn func(models.Protein) error) error
}

// ProteinSource is the namespace source of UniProt proteins, stored in the proteins table.
type ProteinSource struct {
	DB        *gorm.DB
	Proteome  ProteomeStreamer
	TaxonID   int
	BatchSize int
	Logger    *zap.Logger
}

// NewProteinSource creates a source for the reviewed proteome of taxonID.
func NewProteinSource(db *gorm.DB, proteome ProteomeStreamer, taxonID int, logger *zap.Logger) *ProteinSource {
	return &ProteinSource{DB: db, Proteome: proteome, TaxonID: taxonID, BatchSize: defaultBatchSize, Logger: logger}
}

func (s *ProteinSource) ModuleName() string { return "uniprot" }

func (s *ProteinSource) Identifiers() Identifiers {
	return Identifiers{
		RecommendedName: "UniProt",
		Namespace:       "UNIPROT",
		URL:             "https://www.uniprot.org/uniprotkb",
		QueryURL:        "https://www.uniprot.org/uniprotkb/[VALUE]",
	}
}

func (s *ProteinSource) scope(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&models.Protein{}).Where("taxon_id = ?", s.TaxonID)
}

func (s *ProteinSource) IsPopulated(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx)
	return n > 0, err
}

func (s *ProteinSource) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.scope(ctx).Count(&n).Error
	return n, err
}

// Populate stores the streamed proteome. Accessions already present are left untouched.
func (s *ProteinSource) Populate(ctx context.Context) error {
	if s.Proteome == nil {
		return fmt.Errorf("no proteome stream configured")
	}
	batch := make([]models.Protein, 0, s.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.DB.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "accession"}}, DoNothing: true}).
			Create(&batch).Error
		batch = batch[:0]
		return err
	}

	n := 0
	err := s.Proteome.Stream(ctx, s.TaxonID, func(p models.Protein) error {
		batch = append(batch, p)
		n++
		if len(batch) >= s.BatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	s.Logger.Info("Stored proteins", zap.Int("taxon_id", s.TaxonID), zap.Int("proteins", n))
	return nil
}

// Iterate walks the proteins in primary key order.
func (s *ProteinSource) Iterate(ctx context.Context, fn func(models.Protein) error) error {
	var batch []models.Protein
	return s.scope(ctx).FindInBatches(&batch, s.BatchSize, func(_ *gorm.DB, _ int) error {
		for _, p := range batch {
			if err := fn(p); err != nil {
				return err
			}
		}
		return nil
	}).Error
}

func (s *ProteinSource) Identifier(p models.Protein) string { return p.Accession }

func (s *ProteinSource) Entry(p models.Protein) *models.NamespaceEntry {
	if p.Accession == "" {
		return nil
	}
	return &models.NamespaceEntry{Identifier: p.Accession, Name: p.Mnemonic, Encoding: "GRP"}
}
