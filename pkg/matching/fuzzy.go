package matching

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Ramsey-B/clover/pkg/models"
)

const (
	defaultWorkers       = 4
	defaultProgressEvery = 50
)

// FuzzyConfig configures a fuzzy matching pass
type FuzzyConfig struct {
	Method models.MatchMethod
	// MatchType labels the result rows. Defaults to the method name.
	MatchType     string
	Threshold     float64
	Workers       int
	ProgressEvery int
}

// MatchFuzzy scores each principal against its blocked candidate set and
// keeps the best candidate at or above the threshold. Ties go to the earliest
// candidate in input order. Principals below the threshold produce no row.
func MatchFuzzy(ctx context.Context, principals []models.Record, index *Index, cfg FuzzyConfig, onProgress func(done, total int)) ([]models.MatchRecord, error) {
	scorer, ok := ScorerFor(cfg.Method)
	if !ok {
		return nil, NewConfigurationError("method %q is not a fuzzy method", cfg.Method)
	}

	matchType := cfg.MatchType
	if matchType == "" {
		matchType = string(cfg.Method)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	progressEvery := cfg.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = defaultProgressEvery
	}

	results := make([]*models.MatchRecord, len(principals))
	jobs := make(chan int)
	var done int64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				principal := principals[i]

				var best *models.Record
				bestScore := 0.0
				for _, candidate := range index.CandidatesFor(principal) {
					score := scorer(principal.NormalizedText, candidate.NormalizedText)
					if score > bestScore {
						bestScore = score
						c := candidate
						best = &c
					}
				}

				if best != nil && bestScore >= cfg.Threshold {
					score := bestScore
					results[i] = &models.MatchRecord{
						PrincipalID:   principal.ID,
						PrincipalText: principal.OriginalText,
						CandidateID:   &best.ID,
						CandidateText: &best.OriginalText,
						MatchType:     matchType,
						MatchScore:    &score,
					}
				}

				completed := atomic.AddInt64(&done, 1)
				if onProgress != nil && (completed%int64(progressEvery) == 0 || completed == int64(len(principals))) {
					onProgress(int(completed), len(principals))
				}
			}
		}()
	}

loop:
	for i := range principals {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			break loop
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, NewStageError("fuzzy", err)
	}

	matched := make([]models.MatchRecord, 0, len(principals))
	for _, result := range results {
		if result != nil {
			matched = append(matched, *result)
		}
	}
	return matched, nil
}
