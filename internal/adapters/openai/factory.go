package openai

import (
	"fmt"

	"github.com/mikey/llm-email-triage/internal/config"
	"go.uber.org/zap"
)

// Factory creates OpenAI clients from configuration
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new OpenAI factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateLLMClient creates an OpenAI chat client
func (f *Factory) CreateLLMClient() (*OpenAIClient, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("openai.api_key is required")
	}
	return NewOpenAIClient(openaiCfg.APIKey, openaiCfg.ModelName, openaiCfg.MaxTokens, f.logger), nil
}

// CreateEmbedder creates an OpenAI embedder
func (f *Factory) CreateEmbedder() (*Embedder, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("openai.api_key is required")
	}
	return NewEmbedder(openaiCfg.APIKey, openaiCfg.EmbeddingModel, f.logger), nil
}
