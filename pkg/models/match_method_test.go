package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchMethod(t *testing.T) {
	for _, method := range AllMatchMethods {
		parsed, err := ParseMatchMethod(string(method))
		require.NoError(t, err)
		assert.Equal(t, method, parsed)
	}

	_, err := ParseMatchMethod("levenshtein")
	assert.Error(t, err)

	_, err = ParseMatchMethod("")
	assert.Error(t, err)
}

func TestIsFuzzy(t *testing.T) {
	assert.True(t, MatchMethodFullSequence.IsFuzzy())
	assert.True(t, MatchMethodSubstringInclusion.IsFuzzy())
	assert.True(t, MatchMethodOrderInsensitive.IsFuzzy())
	assert.True(t, MatchMethodCoreWordSet.IsFuzzy())
	assert.False(t, MatchMethodSemantic.IsFuzzy())
	assert.False(t, MatchMethodHybrid.IsFuzzy())
}
