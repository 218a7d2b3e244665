package mapping

// IntAct classifies IntAct interaction types.
var IntAct = newClassifier("intact", intactRelations, intactFunctions)

var intactRelations = map[string]Category{
	"phosphorylation reaction":    Increases,
	"sumoylation reaction":        Increases,
	"methylation reaction":        Increases,
	"transglutamination reaction": Increases,
	"ubiquitination reaction":     Increases,
	"acetylation reaction":        Increases,
	"adp ribosylation reaction":   Increases,
	"neddylation reaction":        Increases,
	"hydroxylation reaction":      Increases,
	"phosphotransfer reaction":    Increases,
	"glycosylation reaction":      Increases,
	"palmitoylation reaction":     Increases,

	"deubiquitination reaction":     Decreases,
	"protein cleavage":              Decreases,
	"cleavage reaction":             Decreases,
	"deacetylation reaction":        Decreases,
	"lipoprotein cleavage reaction": Decreases,
	"dna cleavage":                  Decreases,
	"rna cleavage":                  Decreases,
	"dephosphorylation reaction":    Decreases,

	"physical association":      Association,
	"association":               Association,
	"colocalization":            Association,
	"direct interaction":        Association,
	"enzymatic reaction":        Association,
	"atpase reaction":           Association,
	"self interaction":          Association,
	"gtpase reaction":           Association,
	"putative self interaction": Association,

	"covalent binding": HasComponent,
	"disulfide bond":   HasComponent,
}

var intactFunctions = map[string]string{
	"covalent binding": "complexAbundance",
	"disulfide bond":   "complexAbundance",

	"deubiquitination reaction":   "proteinModification(Ub)",
	"ubiquitination reaction":     "proteinModification(Ub)",
	"phosphorylation reaction":    "proteinModification(Ph)",
	"dephosphorylation reaction":  "proteinModification(Ph)",
	"methylation reaction":        "proteinModification(Me)",
	"glycosylation reaction":      "proteinModification(Glyco)",
	"sumoylation reaction":        "proteinModification",
	"transglutamination reaction": "proteinModification",
	"acetylation reaction":        "proteinModification",
	"adp ribosylation reaction":   "proteinModification",
	"neddylation reaction":        "proteinModification",
	"hydroxylation reaction":      "proteinModification",
	"phosphotransfer reaction":    "proteinModification",
	"palmitoylation reaction":     "proteinModification",

	"colocalization": "location",

	"protein cleavage":  "degradation",
	"cleavage reaction": "degradation",

	"atpase reaction":               "reaction",
	"gtpase reaction":               "reaction",
	"lipoprotein cleavage reaction": "proteinAbundance",
	"dna cleavage":                  "geneAbundance",
	"rna cleavage":                  "rnaAbundance",
}
