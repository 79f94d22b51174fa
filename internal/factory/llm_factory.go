package factory

import (
	"fmt"

	"github.com/mikey/llm-email-triage/internal/adapters/bedrock"
	"github.com/mikey/llm-email-triage/internal/adapters/gemini"
	"github.com/mikey/llm-email-triage/internal/adapters/openai"
	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new LLM client based on the configuration.
// Provider "none" returns nil: the pipeline then runs on keyword fallbacks
// only.
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "openai":
		client, err := openai.NewFactory(f.cfg, f.logger).CreateLLMClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "bedrock":
		client, err := bedrock.NewFactory(f.cfg, f.logger).CreateLLMClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := gemini.NewFactory(f.cfg, f.logger).CreateLLMClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "none":
		f.logger.Warn("No LLM provider configured, triage will use keyword fallbacks only")
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}

// CreateEmbedder creates the embedder used by the vector index. Embeddings
// always go through OpenAI regardless of the chat provider.
func (f *LLMFactory) CreateEmbedder() (core.Embedder, error) {
	embedder, err := openai.NewFactory(f.cfg, f.logger).CreateEmbedder()
	if err != nil {
		return nil, err
	}
	return embedder, nil
}

// MaxBodySize returns the configured body cutoff for the active provider
func (f *LLMFactory) MaxBodySize() int {
	switch f.cfg.GetLLM().Provider {
	case "bedrock":
		return f.cfg.GetBedrock().MaxBodySize
	case "gemini":
		return f.cfg.GetGemini().MaxBodySize
	default:
		return f.cfg.GetOpenAI().MaxBodySize
	}
}
