package matching

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Ramsey-B/clover/pkg/logging"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(embedder Embedder) *Pipeline {
	return NewPipeline(logging.NewNoop(), embedder, Options{})
}

type progressCapture struct {
	mu       sync.Mutex
	frames   []float64
	messages []string
}

func (p *progressCapture) fn(fraction float64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, fraction)
	p.messages = append(p.messages, message)
}

func TestPipelineRunExactAndFuzzy(t *testing.T) {
	pipeline := newTestPipeline(nil)

	result, err := pipeline.Run(context.Background(), RunConfig{
		Method:     models.MatchMethodFullSequence,
		Principals: []string{"Acme Corp", "Akme Corp", "Zzz Qqq"},
		Candidates: []string{"ACME CORP."},
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	assert.Equal(t, models.MatchTypeExact, result.Records[0].MatchType)
	assert.Equal(t, string(models.MatchMethodFullSequence), result.Records[1].MatchType)
	assert.Equal(t, models.MatchTypeUnmatched, result.Records[2].MatchType)

	assert.Equal(t, 1, result.ExactMatches)
	assert.Equal(t, 1, result.AdvancedMatches)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Matched)
	assert.InDelta(t, 66.67, result.Stats.MatchRate, 0.01)
}

func TestPipelineRunDeduplicatesInputs(t *testing.T) {
	pipeline := newTestPipeline(nil)

	result, err := pipeline.Run(context.Background(), RunConfig{
		Method:     models.MatchMethodFullSequence,
		Principals: []string{"Acme Corp", "acme corp!", "  ACME CORP  "},
		Candidates: []string{"Acme Corp"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, 1, result.Principals)
}

func TestPipelineRunAppliesStopWords(t *testing.T) {
	pipeline := newTestPipeline(nil)

	result, err := pipeline.Run(context.Background(), RunConfig{
		Method:     models.MatchMethodFullSequence,
		StopWords:  []string{"inc", "ltd"},
		Principals: []string{"Acme Corp Inc"},
		Candidates: []string{"Acme Corp Ltd"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, models.MatchTypeExact, result.Records[0].MatchType)
}

func TestPipelineRunSemantic(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"acme corp":        {1, 0},
		"acme corporation": {0.95, 0.05},
	}}
	pipeline := newTestPipeline(embedder)

	progress := &progressCapture{}
	result, err := pipeline.Run(context.Background(), RunConfig{
		Method:     models.MatchMethodSemantic,
		Threshold:  75,
		Principals: []string{"Acme Corp"},
		Candidates: []string{"Acme Corporation"},
	}, progress.fn)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, models.MatchTypeSemantic, result.Records[0].MatchType)

	progress.mu.Lock()
	defer progress.mu.Unlock()
	assert.Contains(t, progress.messages, "embedding")
	assert.Contains(t, progress.messages, "semantic scoring")
}

func TestPipelineRunHybrid(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"worldwide shipping partners": {1, 0},
		"global shipping co":          {1, 0},
		"acme corp":                   {0, 1},
	}}
	pipeline := newTestPipeline(embedder)

	result, err := pipeline.Run(context.Background(), RunConfig{
		Method:     models.MatchMethodHybrid,
		Threshold:  80,
		Principals: []string{"Akme Corp", "Worldwide Shipping Partners"},
		Candidates: []string{"Acme Corp", "Global Shipping Co"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	for _, row := range result.Records {
		assert.Equal(t, models.MatchTypeHybrid, row.MatchType)
	}
}

func TestPipelineRunProgressIsMonotonicAndCompletes(t *testing.T) {
	pipeline := newTestPipeline(nil)
	progress := &progressCapture{}

	_, err := pipeline.Run(context.Background(), RunConfig{
		Method:     models.MatchMethodOrderInsensitive,
		Principals: []string{"Acme Corp", "Globex Corporation", "Initech LLC"},
		Candidates: []string{"Acme Corp", "Initech"},
	}, progress.fn)
	require.NoError(t, err)

	progress.mu.Lock()
	defer progress.mu.Unlock()
	require.NotEmpty(t, progress.frames)
	for i := 1; i < len(progress.frames); i++ {
		assert.GreaterOrEqual(t, progress.frames[i], progress.frames[i-1])
	}
	assert.Equal(t, 1.0, progress.frames[len(progress.frames)-1])
	assert.Contains(t, progress.messages, "exact matching")
}

func TestPipelineRunValidation(t *testing.T) {
	tests := []struct {
		name     string
		cfg      RunConfig
		embedder Embedder
		wantCfg  bool
		wantIn   bool
	}{
		{
			name: "unknown method",
			cfg: RunConfig{
				Method:     "bogus",
				Principals: []string{"a"},
				Candidates: []string{"b"},
			},
			wantCfg: true,
		},
		{
			name: "threshold too low",
			cfg: RunConfig{
				Method:     models.MatchMethodFullSequence,
				Threshold:  50,
				Principals: []string{"a"},
				Candidates: []string{"b"},
			},
			wantCfg: true,
		},
		{
			name: "threshold too high",
			cfg: RunConfig{
				Method:     models.MatchMethodFullSequence,
				Threshold:  101,
				Principals: []string{"a"},
				Candidates: []string{"b"},
			},
			wantCfg: true,
		},
		{
			name: "semantic threshold out of range",
			cfg: RunConfig{
				Method:            models.MatchMethodFullSequence,
				Threshold:         75,
				SemanticThreshold: 40,
				Principals:        []string{"a"},
				Candidates:        []string{"b"},
			},
			wantCfg: true,
		},
		{
			name: "semantic without embedder",
			cfg: RunConfig{
				Method:     models.MatchMethodSemantic,
				Principals: []string{"a"},
				Candidates: []string{"b"},
			},
			wantCfg: true,
		},
		{
			name: "empty principals",
			cfg: RunConfig{
				Method:     models.MatchMethodFullSequence,
				Candidates: []string{"b"},
			},
			wantIn: true,
		},
		{
			name: "empty candidates",
			cfg: RunConfig{
				Method:     models.MatchMethodFullSequence,
				Principals: []string{"a"},
			},
			wantIn: true,
		},
		{
			name: "principals blank after cleaning",
			cfg: RunConfig{
				Method:     models.MatchMethodFullSequence,
				Principals: []string{"  ", "..."},
				Candidates: []string{"b"},
			},
			wantIn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := newTestPipeline(tt.embedder)
			_, err := pipeline.Run(context.Background(), tt.cfg, nil)
			require.Error(t, err)

			if tt.wantCfg {
				var cfgErr *ConfigurationError
				assert.ErrorAs(t, err, &cfgErr)
			}
			if tt.wantIn {
				var inErr *InputError
				assert.ErrorAs(t, err, &inErr)
			}
		})
	}
}

func TestPipelineRunKeepsExactRowsWhenSemanticFails(t *testing.T) {
	providerErr := errors.New("provider down")
	pipeline := newTestPipeline(&fakeEmbedder{err: providerErr})

	result, err := pipeline.Run(context.Background(), RunConfig{
		Method:     models.MatchMethodSemantic,
		Principals: []string{"Acme Corp", "Globex"},
		Candidates: []string{"ACME CORP"},
	}, nil)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.ErrorIs(t, err, providerErr)

	require.NotNil(t, result)
	require.Len(t, result.Records, 2)
	assert.Equal(t, models.MatchTypeExact, result.Records[0].MatchType)
	assert.Equal(t, models.MatchTypeUnmatched, result.Records[1].MatchType)
	assert.Equal(t, 1, result.ExactMatches)
}

func TestPipelineRunThresholdDefaults(t *testing.T) {
	pipeline := newTestPipeline(nil)

	// score here is roughly 89, above the default gate of 75
	result, err := pipeline.Run(context.Background(), RunConfig{
		Method:     models.MatchMethodFullSequence,
		Principals: []string{"Akme Corp"},
		Candidates: []string{"Acme Corp"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, string(models.MatchMethodFullSequence), result.Records[0].MatchType)
}

func TestPipelineRunUsesConfiguredDefaultThreshold(t *testing.T) {
	pipeline := NewPipeline(logging.NewNoop(), nil, Options{DefaultThreshold: 90})

	// the same ~89 score falls below a stricter configured default
	result, err := pipeline.Run(context.Background(), RunConfig{
		Method:     models.MatchMethodFullSequence,
		Principals: []string{"Akme Corp"},
		Candidates: []string{"Acme Corp"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, models.MatchTypeUnmatched, result.Records[0].MatchType)
}
