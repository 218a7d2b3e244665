package models

import "time"

// Protein is a UniProt record, the identifier source of the uniprot namespace.
type Protein struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Accession string `json:"accession" gorm:"uniqueIndex;size:32;not null"`
	Mnemonic  string `json:"mnemonic,omitempty" gorm:"index"` // e.g. "TP53_HUMAN"
	TaxonID   int    `json:"taxon_id" gorm:"index"`
	Reviewed  bool   `json:"reviewed" gorm:"default:false"`
}

// TableName sets the table name explicitly.
func (Protein) TableName() string {
	return "proteins"
}
