package mapping

import (
	"regexp"
)

var modificationTag = regexp.MustCompile(`^proteinModification\((\w+)\)$`)

// Classifier maps interaction-type labels of one dataset to categories and function tags.
// Its tables are fixed at construction and never mutated.
type Classifier struct {
	name      string
	relations map[string]Category
	functions map[string]string
}

func newClassifier(name string, relations map[string]Category, functions map[string]string) *Classifier {
	c := &Classifier{
		name:      name,
		relations: make(map[string]Category, len(relations)),
		functions: make(map[string]string, len(functions)),
	}
	for k, v := range relations {
		c.relations[Normalize(k)] = v
	}
	for k, v := range functions {
		c.functions[Normalize(k)] = v
	}
	return c
}

// Name returns the dataset this classifier belongs to.
func (c *Classifier) Name() string {
	return c.name
}

// Classify returns the category of label, Unrecognized for anything unknown.
func (c *Classifier) Classify(label string) Category {
	if c == nil {
		return Unrecognized
	}
	return c.relations[Normalize(label)]
}

// Function returns the BEL function tag of label, e.g. "proteinModification(Ub)".
func (c *Classifier) Function(label string) string {
	if c == nil {
		return ""
	}
	return c.functions[Normalize(label)]
}

// Modification returns the protein modification code carried by the function tag of label
// ("Ub", "Ph", "Me", "Glyco"), or "" when the target is not modified.
func (c *Classifier) Modification(label string) string {
	m := modificationTag.FindStringSubmatch(c.Function(label))
	if m == nil {
		return ""
	}
	return m[1]
}

// Labels returns the number of labels the classifier knows.
func (c *Classifier) Labels() int {
	return len(c.relations)
}
