// Package normalizers provides text normalization for match records
package normalizers

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("remove_punctuation", RemovePunctuation)
	Register("collapse_whitespace", CollapseWhitespace)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// RemovePunctuation replaces punctuation and symbol characters with spaces so
// that "O'Brien-Smith" still splits into comparable tokens
func RemovePunctuation(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// CollapseWhitespace reduces runs of whitespace to single spaces
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RemoveStopWords drops whole tokens that appear in the stop word list.
// Comparison is done on the already-normalized token text.
func RemoveStopWords(s string, stopWords []string) string {
	if len(stopWords) == 0 {
		return s
	}

	drop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		w = ApplyChain(w, "lowercase", "trim")
		if w != "" {
			drop[w] = struct{}{}
		}
	}

	var kept []string
	for _, token := range strings.Fields(s) {
		if _, ok := drop[token]; !ok {
			kept = append(kept, token)
		}
	}
	return strings.Join(kept, " ")
}

// CleanText runs the full cleaning chain used for match records
func CleanText(s string, stopWords []string) string {
	s = ApplyChain(s, "lowercase", "remove_punctuation", "collapse_whitespace")
	return RemoveStopWords(s, stopWords)
}

// CleanRecords converts raw input texts into match records. Entries that are
// blank after cleaning are dropped, and entries whose cleaned form was already
// seen are dropped too, keeping the first occurrence. Record IDs encode the
// original input position so results can be traced back to the source row.
func CleanRecords(prefix string, texts []string, stopWords []string) []models.Record {
	records := make([]models.Record, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))

	for i, text := range texts {
		cleaned := CleanText(text, stopWords)
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}

		records = append(records, models.Record{
			ID:             fmt.Sprintf("%s-%d", prefix, i),
			NormalizedText: cleaned,
			OriginalText:   strings.TrimSpace(text),
		})
	}

	return records
}
