package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Embedder implements the core.Embedder interface using the OpenAI
// embeddings endpoint.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	logger *zap.Logger
}

// NewEmbedder creates a new OpenAI embedder
func NewEmbedder(apiKey string, model string, logger *zap.Logger) *Embedder {
	return &Embedder{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
		logger: logger,
	}
}

// Embed returns the embedding vector for a single text
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding with OpenAI: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response from OpenAI")
	}

	e.logger.Debug("Created embedding",
		zap.String("model", string(e.model)),
		zap.Int("dimensions", len(resp.Data[0].Embedding)))

	return resp.Data[0].Embedding, nil
}
