package models

import "fmt"

// MatchMethod selects the advanced matching stage for a run.
type MatchMethod string

const (
	// MatchMethodFullSequence compares whole strings in strict character order.
	MatchMethodFullSequence MatchMethod = "full_sequence"
	// MatchMethodSubstringInclusion rewards one string being contained in the other.
	MatchMethodSubstringInclusion MatchMethod = "substring_inclusion"
	// MatchMethodOrderInsensitive compares token-sorted strings.
	MatchMethodOrderInsensitive MatchMethod = "order_insensitive"
	// MatchMethodCoreWordSet compares shared token sets, ignoring extra tokens.
	MatchMethodCoreWordSet MatchMethod = "core_word_set"
	// MatchMethodSemantic scores by embedding cosine similarity.
	MatchMethodSemantic MatchMethod = "semantic"
	// MatchMethodHybrid tries fuzzy first and falls back to semantic.
	MatchMethodHybrid MatchMethod = "hybrid"
)

// AllMatchMethods lists every selectable method, in UI display order.
var AllMatchMethods = []MatchMethod{
	MatchMethodFullSequence,
	MatchMethodSubstringInclusion,
	MatchMethodOrderInsensitive,
	MatchMethodCoreWordSet,
	MatchMethodSemantic,
	MatchMethodHybrid,
}

// ParseMatchMethod validates a method name from config or a request body.
func ParseMatchMethod(s string) (MatchMethod, error) {
	for _, m := range AllMatchMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown match method %q", s)
}

// IsFuzzy reports whether the method is one of the string-similarity variants.
func (m MatchMethod) IsFuzzy() bool {
	switch m {
	case MatchMethodFullSequence, MatchMethodSubstringInclusion, MatchMethodOrderInsensitive, MatchMethodCoreWordSet:
		return true
	}
	return false
}
