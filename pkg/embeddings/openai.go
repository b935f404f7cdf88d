// Package embeddings provides the embedding provider used by semantic matching
package embeddings

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/sashabaranov/go-openai"

	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Config holds embedding provider settings
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client embeds texts through the OpenAI embeddings API. It implements
// matching.Embedder.
type Client struct {
	client *openai.Client
	model  openai.EmbeddingModel
	logger ectologger.Logger
}

// NewClient creates an embedding client. A custom BaseURL routes requests to a
// compatible self-hosted provider.
func NewClient(cfg Config, logger ectologger.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := openai.SmallEmbedding3
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}
}

// Embed returns one vector per input text, in input order
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := tracing.StartSpan(ctx, "embeddings.Client.Embed")
	defer span.End()

	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).WithField("batch_size", len(texts)).Error("Failed to create embeddings")
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding provider returned out-of-range index %d", data.Index)
		}
		vectors[data.Index] = data.Embedding
	}

	return vectors, nil
}
