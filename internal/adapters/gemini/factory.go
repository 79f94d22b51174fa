package gemini

import (
	"fmt"

	"github.com/mikey/llm-email-triage/internal/config"
	"go.uber.org/zap"
)

// Factory creates Gemini clients from configuration
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new Gemini factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateLLMClient creates a new Gemini client
func (f *Factory) CreateLLMClient() (*GeminiClient, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("gemini.api_key is required")
	}
	return NewGeminiClient(geminiCfg.APIKey, geminiCfg.ModelName, geminiCfg.MaxTokens, f.logger)
}
