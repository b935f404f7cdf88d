package matching

import (
	"context"

	"github.com/Ramsey-B/clover/pkg/models"
)

// HybridConfig configures the two-pass hybrid matcher
type HybridConfig struct {
	// FuzzyMethod is the scorer for the first pass. Defaults to the
	// core-word-set comparison.
	FuzzyMethod       models.MatchMethod
	FuzzyThreshold    float64
	SemanticThreshold float64
	BatchSize         int
	Workers           int
	ProgressEvery     int
}

// MatchHybrid runs a fuzzy pass first and sends only the principals it could
// not settle to the semantic pass, so embedding cost is paid for the hard
// residue alone. Every resulting row is labeled Hybrid regardless of which
// pass produced it.
func MatchHybrid(ctx context.Context, principals []models.Record, index *Index, embedder Embedder, cfg HybridConfig, onFuzzy, onEmbed, onScore func(done, total int)) ([]models.MatchRecord, error) {
	if embedder == nil {
		return nil, NewConfigurationError("hybrid matching requires an embedding provider")
	}

	fuzzyMethod := cfg.FuzzyMethod
	if fuzzyMethod == "" {
		fuzzyMethod = models.MatchMethodCoreWordSet
	}

	fuzzyMatched, err := MatchFuzzy(ctx, principals, index, FuzzyConfig{
		Method:        fuzzyMethod,
		MatchType:     models.MatchTypeHybrid,
		Threshold:     cfg.FuzzyThreshold,
		Workers:       cfg.Workers,
		ProgressEvery: cfg.ProgressEvery,
	}, onFuzzy)
	if err != nil {
		return nil, err
	}

	settled := make(map[string]struct{}, len(fuzzyMatched))
	for _, row := range fuzzyMatched {
		settled[row.PrincipalID] = struct{}{}
	}

	var residual []models.Record
	for _, principal := range principals {
		if _, ok := settled[principal.ID]; !ok {
			residual = append(residual, principal)
		}
	}

	semanticMatched, err := MatchSemantic(ctx, residual, index, embedder, SemanticConfig{
		MatchType:     models.MatchTypeHybrid,
		Threshold:     cfg.SemanticThreshold,
		BatchSize:     cfg.BatchSize,
		Workers:       cfg.Workers,
		ProgressEvery: cfg.ProgressEvery,
	}, onEmbed, onScore)
	if err != nil {
		return nil, err
	}

	return append(fuzzyMatched, semanticMatched...), nil
}
