package mapping

// BioGRID classifies BioGRID interaction types. BioGRID carries no function tags.
var BioGRID = newClassifier("biogrid", biogridRelations, nil)

var biogridRelations = map[string]Category{
	"synthetic genetic interaction defined by inequality": Increases,
	"additive genetic interaction defined by inequality":  Increases,

	"suppressive genetic interaction defined by inequality": Decreases,

	"direct interaction":   Association,
	"physical association": Association,
	"colocalization":       Association,
	"association":          Association,
}
