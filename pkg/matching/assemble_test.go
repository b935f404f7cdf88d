package matching

import (
	"testing"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchRow(principalID, candidateID, matchType string, score float64) models.MatchRecord {
	return models.MatchRecord{
		PrincipalID: principalID,
		CandidateID: &candidateID,
		MatchType:   matchType,
		MatchScore:  &score,
	}
}

func TestAssembleOneRowPerPrincipalInOrder(t *testing.T) {
	principals := []models.Record{
		record("p-0", "acme"),
		record("p-1", "globex"),
		record("p-2", "initech"),
	}
	exact := []models.MatchRecord{matchRow("p-1", "c-5", models.MatchTypeExact, 100)}
	advanced := []models.MatchRecord{matchRow("p-2", "c-7", models.MatchTypeSemantic, 82)}

	rows, stats := Assemble(principals, exact, advanced)

	require.Len(t, rows, 3)
	assert.Equal(t, "p-0", rows[0].PrincipalID)
	assert.Equal(t, models.MatchTypeUnmatched, rows[0].MatchType)
	assert.Nil(t, rows[0].CandidateID)
	assert.Nil(t, rows[0].MatchScore)
	assert.Equal(t, models.MatchTypeExact, rows[1].MatchType)
	assert.Equal(t, models.MatchTypeSemantic, rows[2].MatchType)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Matched)
	assert.InDelta(t, 66.67, stats.MatchRate, 0.01)
}

func TestAssembleExactWinsOverAdvanced(t *testing.T) {
	principals := []models.Record{record("p-0", "acme")}
	exact := []models.MatchRecord{matchRow("p-0", "c-0", models.MatchTypeExact, 100)}
	advanced := []models.MatchRecord{matchRow("p-0", "c-9", models.MatchTypeSemantic, 91)}

	rows, stats := Assemble(principals, exact, advanced)

	require.Len(t, rows, 1)
	assert.Equal(t, models.MatchTypeExact, rows[0].MatchType)
	assert.Equal(t, "c-0", *rows[0].CandidateID)
	assert.Equal(t, 1, stats.Matched)
}

func TestAssembleEmptyInputs(t *testing.T) {
	rows, stats := Assemble(nil, nil, nil)

	assert.Empty(t, rows)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.Matched)
	assert.Zero(t, stats.MatchRate)
}

func TestAssembleAllMatched(t *testing.T) {
	principals := []models.Record{record("p-0", "acme")}
	exact := []models.MatchRecord{matchRow("p-0", "c-0", models.MatchTypeExact, 100)}

	_, stats := Assemble(principals, exact, nil)

	assert.InDelta(t, 100, stats.MatchRate, 0.0001)
}
