package matching

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns fixture vectors by text. Unknown texts get a unit
// vector so cosine math stays well defined.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	batches [][]string
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	f.batches = append(f.batches, texts)

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 0}
		}
	}
	return out, nil
}

func (f *fakeEmbedder) embeddedTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []string
	for _, batch := range f.batches {
		all = append(all, batch...)
	}
	return all
}

func TestMatchSemantic(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"acme corp":        {1, 0},
		"acme corporation": {0.9, 0.1},
		"apex systems":     {-1, 0},
	}}

	principals := []models.Record{record("p-0", "acme corp")}
	index := BuildIndex([]models.Record{
		record("c-0", "acme corporation"),
		record("c-1", "apex systems"),
	})

	matched, err := MatchSemantic(context.Background(), principals, index, embedder, SemanticConfig{
		Threshold: 75,
	}, nil, nil)
	require.NoError(t, err)

	require.Len(t, matched, 1)
	assert.Equal(t, "c-0", *matched[0].CandidateID)
	assert.Equal(t, models.MatchTypeSemantic, matched[0].MatchType)
	require.NotNil(t, matched[0].MatchScore)
	assert.Greater(t, *matched[0].MatchScore, 75.0)
	assert.LessOrEqual(t, *matched[0].MatchScore, 100.0)
}

func TestMatchSemanticThresholdGate(t *testing.T) {
	// orthogonal vectors rescale to a score of 50
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"acme corp":    {1, 0},
		"apex systems": {0, 1},
	}}

	principals := []models.Record{record("p-0", "acme corp")}
	index := BuildIndex([]models.Record{record("c-0", "apex systems")})

	matched, err := MatchSemantic(context.Background(), principals, index, embedder, SemanticConfig{
		Threshold: 60,
	}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatchSemanticThresholdBoundary(t *testing.T) {
	// cosine of {3,4} against {1,0} is 0.6, which rescales to a score of 80
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"acme corp":    {3, 4},
		"apex systems": {1, 0},
	}}

	principals := []models.Record{record("p-0", "acme corp")}
	index := BuildIndex([]models.Record{record("c-0", "apex systems")})

	run := func(threshold float64) []models.MatchRecord {
		matched, err := MatchSemantic(context.Background(), principals, index, embedder, SemanticConfig{
			Threshold: threshold,
		}, nil, nil)
		require.NoError(t, err)
		return matched
	}

	assert.Len(t, run(79), 1)
	assert.Empty(t, run(81))
}

func TestMatchSemanticRequiresEmbedder(t *testing.T) {
	_, err := MatchSemantic(context.Background(), []models.Record{record("p-0", "acme")}, BuildIndex(nil), nil, SemanticConfig{}, nil, nil)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestMatchSemanticWrapsProviderFailure(t *testing.T) {
	providerErr := errors.New("rate limited")
	embedder := &fakeEmbedder{err: providerErr}

	principals := []models.Record{record("p-0", "acme corp")}
	index := BuildIndex([]models.Record{record("c-0", "acme corporation")})

	_, err := MatchSemantic(context.Background(), principals, index, embedder, SemanticConfig{Threshold: 75}, nil, nil)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "embedding", stageErr.Stage)
	assert.ErrorIs(t, err, providerErr)
}

func TestMatchSemanticRejectsVectorCountMismatch(t *testing.T) {
	embedder := &shortEmbedder{}

	principals := []models.Record{record("p-0", "acme corp")}
	index := BuildIndex([]models.Record{record("c-0", "acme corporation")})

	_, err := MatchSemantic(context.Background(), principals, index, embedder, SemanticConfig{Threshold: 75}, nil, nil)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "embedding", stageErr.Stage)
}

type shortEmbedder struct{}

func (s *shortEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return make([][]float32, len(texts)-1), nil
}

func TestMatchSemanticBatchesEmbeddings(t *testing.T) {
	embedder := &fakeEmbedder{}

	principals := []models.Record{record("p-0", "acme one"), record("p-1", "acme two")}
	index := BuildIndex([]models.Record{record("c-0", "acme three")})

	_, err := MatchSemantic(context.Background(), principals, index, embedder, SemanticConfig{
		Threshold: 60,
		BatchSize: 2,
	}, nil, nil)
	require.NoError(t, err)

	require.Len(t, embedder.batches, 2)
	assert.Len(t, embedder.batches[0], 2)
	assert.Len(t, embedder.batches[1], 1)
}

func TestMatchSemanticReportsBothPhases(t *testing.T) {
	embedder := &fakeEmbedder{}

	principals := []models.Record{record("p-0", "acme corp")}
	index := BuildIndex([]models.Record{record("c-0", "acme corporation")})

	var embedCalls, scoreCalls int
	var mu sync.Mutex
	onEmbed := func(done, total int) {
		mu.Lock()
		embedCalls++
		mu.Unlock()
	}
	onScore := func(done, total int) {
		mu.Lock()
		scoreCalls++
		mu.Unlock()
	}

	_, err := MatchSemantic(context.Background(), principals, index, embedder, SemanticConfig{
		Threshold:     60,
		ProgressEvery: 1,
	}, onEmbed, onScore)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, embedCalls, 0)
	assert.Greater(t, scoreCalls, 0)
}
