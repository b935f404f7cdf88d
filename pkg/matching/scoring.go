package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

// ScoreFunc compares two normalized strings and returns a similarity in the
// common [0, 100] score domain shared by every matcher.
type ScoreFunc func(a, b string) float64

// fuzzyScorers dispatches the string-similarity methods. Adding a method means
// adding a models.MatchMethod constant and an entry here.
var fuzzyScorers = map[models.MatchMethod]ScoreFunc{
	models.MatchMethodFullSequence:       FullSequenceScore,
	models.MatchMethodSubstringInclusion: SubstringInclusionScore,
	models.MatchMethodOrderInsensitive:   OrderInsensitiveScore,
	models.MatchMethodCoreWordSet:        CoreWordSetScore,
}

// ScorerFor returns the score function for a fuzzy method
func ScorerFor(method models.MatchMethod) (ScoreFunc, bool) {
	fn, ok := fuzzyScorers[method]
	return fn, ok
}

// FullSequenceScore compares whole strings in strict character order using
// edit distance scaled to [0, 100].
func FullSequenceScore(a, b string) float64 {
	return levenshteinSimilarity([]rune(a), []rune(b)) * 100
}

// SubstringInclusionScore slides the shorter string over the longer one and
// returns the best window score, so "acme" scores high against
// "acme holdings international".
func SubstringInclusionScore(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		score := levenshteinSimilarity(shorter, longer[i:i+len(shorter)]) * 100
		if score > best {
			best = score
		}
		if best >= 100 {
			break
		}
	}
	return best
}

// OrderInsensitiveScore sorts tokens on both sides before a full-sequence
// comparison, so "corp acme" matches "acme corp".
func OrderInsensitiveScore(a, b string) float64 {
	return FullSequenceScore(sortTokens(a), sortTokens(b))
}

// CoreWordSetScore compares the shared token core of both strings, tolerating
// extra tokens on either side. It scores the intersection against each side's
// full token set and keeps the best result.
func CoreWordSetScore(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	var inter, onlyA, onlyB []string
	for token := range setA {
		if _, ok := setB[token]; ok {
			inter = append(inter, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range setB {
		if _, ok := setA[token]; !ok {
			onlyB = append(onlyB, token)
		}
	}

	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	core := strings.Join(inter, " ")
	full1 := strings.TrimSpace(core + " " + strings.Join(onlyA, " "))
	full2 := strings.TrimSpace(core + " " + strings.Join(onlyB, " "))

	best := FullSequenceScore(full1, full2)
	if core != "" {
		if s := FullSequenceScore(core, full1); s > best {
			best = s
		}
		if s := FullSequenceScore(core, full2); s > best {
			best = s
		}
	}
	return best
}

// CosineSimilarity computes the cosine of the angle between two embedding
// vectors. Mismatched or zero-length vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineToScore rescales a cosine similarity from [-1, 1] into the common
// [0, 100] score domain, clamping values that drift outside the range.
func CosineToScore(cosine float64) float64 {
	score := (cosine + 1) / 2 * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func levenshteinSimilarity(a, b []rune) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(s) {
		set[token] = struct{}{}
	}
	return set
}
