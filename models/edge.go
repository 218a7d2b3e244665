package models

import (
	"time"

	"gorm.io/datatypes"
)

// Edge is a persisted, cited BEL relation: source -relation-> target.
type Edge struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// BEL terms, e.g. p(uniprot:P04637 ! P53_HUMAN)
	Source   string `json:"source" gorm:"index:idx_edges_unique_edge,unique;size:512;not null"`
	Relation string `json:"relation" gorm:"index:idx_edges_unique_edge,unique;size:64;not null"`
	Target   string `json:"target" gorm:"index:idx_edges_unique_edge,unique;size:512;not null"`
	Citation string `json:"citation" gorm:"index:idx_edges_unique_edge,unique;size:128;not null"`

	// "act" when the relation targets the activity of Target rather than its abundance.
	ObjectModifier string `json:"object_modifier,omitempty" gorm:"index:idx_edges_unique_edge,unique;size:16;not null;default:''"`

	Evidence string `json:"evidence" gorm:"type:text"`

	// Origin of the edge
	SourceDatabase string `json:"source_database" gorm:"index"`
	RunID          string `json:"run_id" gorm:"index"`

	Annotations datatypes.JSON `json:"annotations,omitempty" gorm:"type:jsonb"`
}

func (Edge) TableName() string { return "edges" }
