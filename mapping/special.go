package mapping

// Override replaces the generic category mapping for a handful of literal interaction types.
type Override struct {
	Category     Category
	Modification string // wrap the target with this protein modification
	Activity     bool   // the target's activity is affected, not its abundance
	// Correlation emits a correlation between the transcripts of both interactors
	// instead of a protein-level edge.
	Correlation bool
	Annotations map[string][]string
}

var specialCases = map[string]Override{
	"deubiquitination": {Category: Decreases, Modification: "Ub"},
	"ubiquitination":   {Category: Increases, Modification: "Ub"},
	"degradation":      {Category: Decreases},
	"activation":       {Category: Increases, Activity: true},
	"activates":        {Category: Increases, Activity: true},
	"co-expression": {
		Correlation: true,
		Annotations: map[string][]string{"cell_line": {"HEK2"}},
	},
	"co-expressed": {
		Correlation: true,
		Annotations: map[string][]string{"cell_line": {"HEK2"}},
	},
}

// Special looks label up in the special-case table. The returned annotations are a copy.
func Special(label string) (Override, bool) {
	o, ok := specialCases[Normalize(label)]
	if !ok {
		return Override{}, false
	}
	if o.Annotations != nil {
		annotations := make(map[string][]string, len(o.Annotations))
		for k, v := range o.Annotations {
			annotations[k] = append([]string(nil), v...)
		}
		o.Annotations = annotations
	}
	return o, true
}
