package matching

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Threshold bounds for the advanced stage gate. Scores live in [0, 100] but
// gates below 60 produce too much noise to be useful.
const (
	MinThreshold     = 60
	MaxThreshold     = 100
	DefaultThreshold = 75
)

// Options tunes pipeline execution. Zero values fall back to defaults.
type Options struct {
	Workers        int
	ProgressEvery  int
	EmbedBatchSize int
	// DefaultThreshold applies when a run omits its threshold.
	DefaultThreshold int
}

// RunConfig describes a single matching run
type RunConfig struct {
	Method    models.MatchMethod
	Threshold int
	// SemanticThreshold gates the semantic fallback pass of the hybrid
	// method. Defaults to Threshold.
	SemanticThreshold int
	StopWords         []string
	Principals        []string
	Candidates        []string
}

// Result is the output of a matching run. When Run returns a StageError the
// Result still carries the rows from the stages that completed.
type Result struct {
	Records         []models.MatchRecord
	Stats           models.RunStats
	ExactMatches    int
	AdvancedMatches int
	Principals      int
	Candidates      int
}

// Pipeline executes matching runs. It is safe for concurrent use.
type Pipeline struct {
	logger   ectologger.Logger
	embedder Embedder
	opts     Options
}

// NewPipeline creates a Pipeline. The embedder may be nil when only fuzzy
// methods will be used.
func NewPipeline(logger ectologger.Logger, embedder Embedder, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = defaultProgressEvery
	}
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = defaultEmbedBatchSize
	}
	if opts.DefaultThreshold < MinThreshold || opts.DefaultThreshold > MaxThreshold {
		opts.DefaultThreshold = DefaultThreshold
	}

	return &Pipeline{
		logger:   logger,
		embedder: embedder,
		opts:     opts,
	}
}

// Run executes the full pipeline: cleaning, exact matching, the configured
// advanced method on the remainder, then assembly. Progress callbacks are
// optional and always move forward.
func (p *Pipeline) Run(ctx context.Context, cfg RunConfig, progress ProgressFunc) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Pipeline.Run")
	defer span.End()

	if err := p.validate(cfg); err != nil {
		return nil, err
	}

	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = p.opts.DefaultThreshold
	}
	semanticThreshold := cfg.SemanticThreshold
	if semanticThreshold == 0 {
		semanticThreshold = threshold
	}

	rep := newReporter(progress)
	rep.report(0, "cleaning records")

	principals := normalizers.CleanRecords("p", cfg.Principals, cfg.StopWords)
	candidates := normalizers.CleanRecords("c", cfg.Candidates, cfg.StopWords)

	if len(principals) == 0 {
		return nil, NewInputError("no usable principal records after cleaning")
	}
	if len(candidates) == 0 {
		return nil, NewInputError("no usable candidate records after cleaning")
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     string(cfg.Method),
		"threshold":  threshold,
		"principals": len(principals),
		"candidates": len(candidates),
	})
	log.Info("starting matching run")

	rep.report(0.05, "exact matching")
	exact, unmatched, err := MatchExact(principals, candidates)
	if err != nil {
		return nil, err
	}
	rep.report(0.15, "exact matching")
	log.WithField("exact_matches", len(exact)).Debug("exact stage complete")

	advanced, err := p.runAdvanced(ctx, cfg.Method, unmatched, candidates, threshold, semanticThreshold, rep)
	if err != nil {
		// rows from completed stages stay usable for the caller
		records, stats := Assemble(principals, exact, nil)
		log.WithError(err).Error("matching run failed")
		return &Result{
			Records:      records,
			Stats:        stats,
			ExactMatches: len(exact),
			Principals:   len(principals),
			Candidates:   len(candidates),
		}, err
	}

	rep.report(0.95, "assembling results")
	records, stats := Assemble(principals, exact, advanced)
	rep.report(1, "completed")

	log.WithFields(map[string]any{
		"matched":    stats.Matched,
		"match_rate": stats.MatchRate,
	}).Info("matching run complete")

	return &Result{
		Records:         records,
		Stats:           stats,
		ExactMatches:    len(exact),
		AdvancedMatches: len(advanced),
		Principals:      len(principals),
		Candidates:      len(candidates),
	}, nil
}

func (p *Pipeline) runAdvanced(ctx context.Context, method models.MatchMethod, unmatched []models.Record, candidates []models.Record, threshold, semanticThreshold int, rep *reporter) ([]models.MatchRecord, error) {
	if len(unmatched) == 0 {
		return nil, nil
	}

	index := BuildIndex(candidates)

	switch {
	case method.IsFuzzy():
		return MatchFuzzy(ctx, unmatched, index, FuzzyConfig{
			Method:        method,
			Threshold:     float64(threshold),
			Workers:       p.opts.Workers,
			ProgressEvery: p.opts.ProgressEvery,
		}, rep.window(0.15, 0.95, "fuzzy scoring"))

	case method == models.MatchMethodSemantic:
		return MatchSemantic(ctx, unmatched, index, p.embedder, SemanticConfig{
			Threshold:     float64(threshold),
			BatchSize:     p.opts.EmbedBatchSize,
			Workers:       p.opts.Workers,
			ProgressEvery: p.opts.ProgressEvery,
		}, rep.window(0.15, 0.6, "embedding"), rep.window(0.6, 0.95, "semantic scoring"))

	case method == models.MatchMethodHybrid:
		return MatchHybrid(ctx, unmatched, index, p.embedder, HybridConfig{
			FuzzyThreshold:    float64(threshold),
			SemanticThreshold: float64(semanticThreshold),
			BatchSize:         p.opts.EmbedBatchSize,
			Workers:           p.opts.Workers,
			ProgressEvery:     p.opts.ProgressEvery,
		}, rep.window(0.15, 0.45, "fuzzy scoring"), rep.window(0.45, 0.7, "embedding"), rep.window(0.7, 0.95, "semantic scoring"))
	}

	return nil, NewConfigurationError("unknown match method %q", method)
}

func (p *Pipeline) validate(cfg RunConfig) error {
	if _, err := models.ParseMatchMethod(string(cfg.Method)); err != nil {
		return NewConfigurationError("unknown match method %q", cfg.Method)
	}

	if cfg.Threshold != 0 && (cfg.Threshold < MinThreshold || cfg.Threshold > MaxThreshold) {
		return NewConfigurationError("threshold %d is outside [%d, %d]", cfg.Threshold, MinThreshold, MaxThreshold)
	}
	if cfg.SemanticThreshold != 0 && (cfg.SemanticThreshold < MinThreshold || cfg.SemanticThreshold > MaxThreshold) {
		return NewConfigurationError("semantic threshold %d is outside [%d, %d]", cfg.SemanticThreshold, MinThreshold, MaxThreshold)
	}

	if (cfg.Method == models.MatchMethodSemantic || cfg.Method == models.MatchMethodHybrid) && p.embedder == nil {
		return NewConfigurationError("method %q requires an embedding provider", cfg.Method)
	}

	if len(cfg.Principals) == 0 {
		return NewInputError("principal list is empty")
	}
	if len(cfg.Candidates) == 0 {
		return NewInputError("candidate list is empty")
	}

	return nil
}
