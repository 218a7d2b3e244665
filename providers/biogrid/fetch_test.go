package biogrid

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biorel/models"
)

const header = "#ID Interactor A\tID Interactor B\tAlt IDs Interactor A\tAlt IDs Interactor B\tPublication Identifiers\tInteraction Types\n"

func TestURL(t *testing.T) {
	assert.Equal(t,
		"https://downloads.thebiogrid.org/Download/BioGRID/Release-Archive/BIOGRID-3.5.183/BIOGRID-ALL-3.5.183.mitab.zip",
		URL("https://downloads.thebiogrid.org/Download/BioGRID/Release-Archive/", "3.5.183"))
	assert.Equal(t, "BIOGRID-ALL-3.5.183.mitab.txt", ArchiveMember("3.5.183"))
}

func TestParse(t *testing.T) {
	input := header +
		"entrez gene/locuslink:6416\tentrez gene/locuslink:2318\t" +
		"biogrid:112315|uniprot/swiss-prot:P45985|refseq:NP_003001\tbiogrid:108607|uniprot/swiss-prot:Q14315\t" +
		"pubmed:9006895\tpsi-mi:\"MI:0915\"(physical association)\n" +
		"entrez gene/locuslink:1\tentrez gene/locuslink:2\tbiogrid:1\tuniprot/trembl:Q9\tpubmed:1\tpsi-mi:\"MI:0407\"(direct interaction)\n"

	var got []models.Interaction
	stats, err := Parse(context.Background(), strings.NewReader(input), func(rec models.Interaction) error {
		got = append(got, rec)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 1, stats.Dropped)
	require.Len(t, got, 1)
	assert.Equal(t, "P45985", got[0].Source)
	assert.Equal(t, "Q14315", got[0].Target)
	assert.Equal(t, []string{"9006895"}, got[0].PubMedIDs)
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, strings.NewReader(header+"a\tb\tc\td\te\tf\n"), func(models.Interaction) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
