package models

import "time"

// Namespace is a named, versioned controlled vocabulary.
// Keyword and URL together identify a namespace; it is created at most once.
type Namespace struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `json:"name" gorm:"not null"`
	Keyword  string `json:"keyword" gorm:"index:idx_namespaces_identity,unique;size:255;not null"`
	URL      string `json:"url" gorm:"column:url;index:idx_namespaces_identity,unique;size:512;not null"`
	Version  string `json:"version"`
	Domain   string `json:"domain,omitempty"`
	QueryURL string `json:"query_url,omitempty" gorm:"column:query_url"`

	Entries []NamespaceEntry `json:"entries,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName sets the table name explicitly.
func (Namespace) TableName() string {
	return "namespaces"
}

func (n *Namespace) String() string {
	return n.Keyword + " (" + n.URL + ")"
}

// NamespaceEntry is one (identifier, name) pair of a Namespace.
type NamespaceEntry struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	NamespaceID uint   `json:"namespace_id" gorm:"index;not null"`
	Identifier  string `json:"identifier" gorm:"index;size:255;not null"`
	Name        string `json:"name" gorm:"index"`
	// Encoding holds the BEL function letters, e.g. "GRP" for proteins.
	Encoding string `json:"encoding,omitempty"`
}

// TableName sets the table name explicitly.
func (NamespaceEntry) TableName() string {
	return "namespace_entries"
}
