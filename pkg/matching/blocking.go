package matching

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Index groups candidate records under cheap blocking keys so matchers score
// plausible pairs instead of the full cross product. Candidates are stored
// under their first rune and their token count. Lookups union the first-rune
// bucket with the token counts one above and below, which tolerates a dropped
// or added word without rescanning everything.
type Index struct {
	records []models.Record
	buckets map[string][]int
}

// BuildIndex indexes the candidate list for blocked lookups
func BuildIndex(candidates []models.Record) *Index {
	ix := &Index{
		records: candidates,
		buckets: make(map[string][]int),
	}

	for i, record := range candidates {
		for _, key := range storageKeys(record.NormalizedText) {
			ix.buckets[key] = append(ix.buckets[key], i)
		}
	}

	return ix
}

// Size returns the number of indexed candidates
func (ix *Index) Size() int {
	return len(ix.records)
}

// Records returns the full candidate list backing the index
func (ix *Index) Records() []models.Record {
	return ix.records
}

// CandidatesFor returns the candidates sharing a blocking key with the given
// record, deduplicated and in candidate list order.
func (ix *Index) CandidatesFor(record models.Record) []models.Record {
	seen := make(map[int]struct{})
	var positions []int

	for _, key := range queryKeys(record.NormalizedText) {
		for _, pos := range ix.buckets[key] {
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			positions = append(positions, pos)
		}
	}

	if len(positions) == 0 {
		return nil
	}

	sort.Ints(positions)
	results := make([]models.Record, 0, len(positions))
	for _, pos := range positions {
		results = append(results, ix.records[pos])
	}
	return results
}

func storageKeys(text string) []string {
	keys := make([]string, 0, 2)
	for _, r := range text {
		keys = append(keys, "r:"+string(r))
		break
	}
	keys = append(keys, "t:"+strconv.Itoa(len(strings.Fields(text))))
	return keys
}

func queryKeys(text string) []string {
	keys := make([]string, 0, 4)
	for _, r := range text {
		keys = append(keys, "r:"+string(r))
		break
	}

	count := len(strings.Fields(text))
	for n := count - 1; n <= count+1; n++ {
		if n < 1 {
			continue
		}
		keys = append(keys, "t:"+strconv.Itoa(n))
	}
	return keys
}
