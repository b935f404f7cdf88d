package matching

import (
	"testing"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, text string) models.Record {
	return models.Record{ID: id, NormalizedText: text, OriginalText: text}
}

func TestIndexBlocksOnFirstRune(t *testing.T) {
	ix := BuildIndex([]models.Record{
		record("c-0", "acme corporation international"),
		record("c-1", "zebra logistics partners limited"),
	})

	got := ix.CandidatesFor(record("p-0", "acme"))

	require.Len(t, got, 1)
	assert.Equal(t, "c-0", got[0].ID)
}

func TestIndexBlocksOnNearbyTokenCounts(t *testing.T) {
	ix := BuildIndex([]models.Record{
		record("c-0", "global shipping"),
		record("c-1", "global shipping co"),
		record("c-2", "global shipping co ltd partners"),
	})

	// two tokens queries buckets one through three
	got := ix.CandidatesFor(record("p-0", "worldwide shipping"))

	require.Len(t, got, 2)
	assert.Equal(t, "c-0", got[0].ID)
	assert.Equal(t, "c-1", got[1].ID)
}

func TestIndexDeduplicatesAcrossKeys(t *testing.T) {
	// shares both the first rune and a token count bucket
	ix := BuildIndex([]models.Record{record("c-0", "acme corp")})

	got := ix.CandidatesFor(record("p-0", "acme holdings"))

	require.Len(t, got, 1)
	assert.Equal(t, "c-0", got[0].ID)
}

func TestIndexReturnsCandidateOrder(t *testing.T) {
	ix := BuildIndex([]models.Record{
		record("c-0", "acme one"),
		record("c-1", "acme two"),
		record("c-2", "acme three"),
	})

	got := ix.CandidatesFor(record("p-0", "acme four"))

	require.Len(t, got, 3)
	assert.Equal(t, []string{"c-0", "c-1", "c-2"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestIndexSize(t *testing.T) {
	ix := BuildIndex([]models.Record{record("c-0", "a"), record("c-1", "b")})
	assert.Equal(t, 2, ix.Size())
}
