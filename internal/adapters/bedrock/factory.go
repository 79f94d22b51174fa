package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-email-triage/internal/config"
	"go.uber.org/zap"
)

// Factory creates Bedrock clients from configuration
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateLLMClient creates a new Bedrock client
func (f *Factory) CreateLLMClient() (*BedrockClient, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)
	return NewBedrockClient(client, bedrockCfg.ModelID, bedrockCfg.MaxTokens, f.logger), nil
}
