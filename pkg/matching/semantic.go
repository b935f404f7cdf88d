package matching

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Ramsey-B/clover/pkg/models"
)

const defaultEmbedBatchSize = 64

// Embedder turns a batch of texts into embedding vectors. Implementations live
// in the embeddings package; tests provide in-memory fakes.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SemanticConfig configures a semantic matching pass
type SemanticConfig struct {
	// MatchType labels the result rows. Defaults to Semantic.
	MatchType     string
	Threshold     float64
	BatchSize     int
	Workers       int
	ProgressEvery int
}

// MatchSemantic embeds every record, then scores each principal against its
// blocked candidate set by cosine similarity rescaled into [0, 100]. Embedding
// and scoring report progress separately since embedding dominates wall time.
func MatchSemantic(ctx context.Context, principals []models.Record, index *Index, embedder Embedder, cfg SemanticConfig, onEmbed, onScore func(done, total int)) ([]models.MatchRecord, error) {
	if embedder == nil {
		return nil, NewConfigurationError("semantic matching requires an embedding provider")
	}
	if len(principals) == 0 {
		return nil, nil
	}

	matchType := cfg.MatchType
	if matchType == "" {
		matchType = models.MatchTypeSemantic
	}

	candidates := index.Records()
	vectors, err := embedRecords(ctx, embedder, append(append([]models.Record{}, principals...), candidates...), cfg.BatchSize, onEmbed)
	if err != nil {
		return nil, err
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
				principalVec := vectors[principal.ID]

				var best *models.Record
				bestScore := 0.0
				for _, candidate := range index.CandidatesFor(principal) {
					score := CosineToScore(CosineSimilarity(principalVec, vectors[candidate.ID]))
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
				if onScore != nil && (completed%int64(progressEvery) == 0 || completed == int64(len(principals))) {
					onScore(int(completed), len(principals))
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
		return nil, NewStageError("semantic", err)
	}

	matched := make([]models.MatchRecord, 0, len(principals))
	for _, result := range results {
		if result != nil {
			matched = append(matched, *result)
		}
	}
	return matched, nil
}

// embedRecords embeds records in batches and returns vectors keyed by record
// ID. Duplicate IDs keep the last vector, which is harmless since IDs are
// unique within a run.
func embedRecords(ctx context.Context, embedder Embedder, records []models.Record, batchSize int, onProgress func(done, total int)) (map[string][]float32, error) {
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}

	vectors := make(map[string][]float32, len(records))

	for start := 0; start < len(records); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, NewStageError("embedding", err)
		}

		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, record := range batch {
			texts[i] = record.NormalizedText
		}

		embedded, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, NewStageError("embedding", err)
		}
		if len(embedded) != len(batch) {
			return nil, NewStageError("embedding", fmt.Errorf("provider returned %d vectors for %d texts", len(embedded), len(batch)))
		}

		for i, record := range batch {
			vectors[record.ID] = embedded[i]
		}

		if onProgress != nil {
			onProgress(end, len(records))
		}
	}

	return vectors, nil
}
