package graph

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biorel/models"
)

// GormSink persists edges to the edges table. Duplicate edges (same source, relation,
// object modifier, target and citation) are ignored.
type GormSink struct {
	DB             *gorm.DB
	SourceDatabase string
	RunID          string
}

// NewGormSink returns a sink writing edges tagged with the dataset and ingestion run.
func NewGormSink(db *gorm.DB, sourceDatabase, runID string) *GormSink {
	return &GormSink{DB: db, SourceDatabase: sourceDatabase, RunID: runID}
}

func (s *GormSink) AddEdge(ctx context.Context, e Edge) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	row := models.Edge{
		Source:         e.Source.String(),
		Relation:       string(e.Relation),
		Target:         e.Target.String(),
		Citation:       e.Citation,
		Evidence:       e.Evidence,
		ObjectModifier: e.ObjectModifier,
		SourceDatabase: s.SourceDatabase,
		RunID:          s.RunID,
	}
	if len(e.Annotations) > 0 {
		b, err := json.Marshal(e.Annotations)
		if err != nil {
			return false, fmt.Errorf("marshal annotations: %w", err)
		}
		row.Annotations = b
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "source"}, {Name: "relation"}, {Name: "object_modifier"}, {Name: "target"}, {Name: "citation"},
		},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("insert edge %s: %w", e, res.Error)
	}
	return res.RowsAffected > 0, nil
}
