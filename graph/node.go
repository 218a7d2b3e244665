// Package graph holds BEL nodes and edges and the sinks edges are written to.
package graph

import (
	"fmt"
	"strings"
)

// Function is the BEL function of a node.
type Function string

const (
	ProteinFunction Function = "p"
	RnaFunction     Function = "r"
)

// ProteinModification is a pmod() variant, e.g. pmod(Ub).
type ProteinModification struct {
	Name string
}

func (m ProteinModification) String() string {
	return fmt.Sprintf("pmod(%s)", m.Name)
}

// Node is a namespaced BEL abundance.
type Node struct {
	Function   Function
	Namespace  string
	Identifier string
	Name       string
	Variants   []ProteinModification
}

// Protein returns a p() node.
func Protein(namespace, identifier, name string) Node {
	return Node{Function: ProteinFunction, Namespace: namespace, Identifier: identifier, Name: name}
}

// Rna returns an r() node.
func Rna(namespace, identifier, name string) Node {
	return Node{Function: RnaFunction, Namespace: namespace, Identifier: identifier, Name: name}
}

// WithVariants returns a copy of n carrying the given variants in addition to its own.
func (n Node) WithVariants(variants ...ProteinModification) Node {
	out := n
	out.Variants = append(append([]ProteinModification(nil), n.Variants...), variants...)
	return out
}

// String renders the node in BEL, e.g. p(uniprot:P04637 ! P53_HUMAN, pmod(Ub)).
func (n Node) String() string {
	var b strings.Builder
	b.WriteString(string(n.Function))
	b.WriteByte('(')
	b.WriteString(n.Namespace)
	b.WriteByte(':')
	b.WriteString(quote(n.Identifier))
	if n.Name != "" {
		b.WriteString(" ! ")
		b.WriteString(quote(n.Name))
	}
	for _, v := range n.Variants {
		b.WriteString(", ")
		b.WriteString(v.String())
	}
	b.WriteByte(')')
	return b.String()
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " ,()!:\"") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
