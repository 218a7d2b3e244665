package models

// Interaction is one row of a molecular interaction dataset. It is not persisted.
type Interaction struct {
	Source string // UniProt accession of interactor A
	Target string // UniProt accession of interactor B
	Label  string // raw interaction type, e.g. `psi-mi:"MI:0220"(ubiquitination reaction)`

	// PubMed identifiers without prefix. An interaction without any emits no edge.
	PubMedIDs []string
}
