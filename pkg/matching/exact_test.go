package matching

import (
	"testing"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchExact(t *testing.T) {
	principals := []models.Record{
		{ID: "p-0", NormalizedText: "acme corp", OriginalText: "Acme Corp"},
		{ID: "p-1", NormalizedText: "globex", OriginalText: "Globex"},
	}
	candidates := []models.Record{
		{ID: "c-0", NormalizedText: "acme corp", OriginalText: "ACME CORP."},
		{ID: "c-1", NormalizedText: "initech", OriginalText: "Initech"},
	}

	matched, unmatched, err := MatchExact(principals, candidates)
	require.NoError(t, err)

	require.Len(t, matched, 1)
	assert.Equal(t, "p-0", matched[0].PrincipalID)
	assert.Equal(t, "Acme Corp", matched[0].PrincipalText)
	require.NotNil(t, matched[0].CandidateID)
	assert.Equal(t, "c-0", *matched[0].CandidateID)
	assert.Equal(t, "ACME CORP.", *matched[0].CandidateText)
	assert.Equal(t, models.MatchTypeExact, matched[0].MatchType)
	require.NotNil(t, matched[0].MatchScore)
	assert.Equal(t, 100.0, *matched[0].MatchScore)

	require.Len(t, unmatched, 1)
	assert.Equal(t, "p-1", unmatched[0].ID)
}

func TestMatchExactFirstCandidateWinsOnDuplicates(t *testing.T) {
	principals := []models.Record{{ID: "p-0", NormalizedText: "acme", OriginalText: "acme"}}
	candidates := []models.Record{
		{ID: "c-0", NormalizedText: "acme", OriginalText: "Acme"},
		{ID: "c-1", NormalizedText: "acme", OriginalText: "ACME"},
	}

	matched, _, err := MatchExact(principals, candidates)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "c-0", *matched[0].CandidateID)
}

func TestMatchExactRejectsEmptyText(t *testing.T) {
	_, _, err := MatchExact([]models.Record{{ID: "p-0"}}, nil)

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, inputErr.Msg, "p-0")
}
