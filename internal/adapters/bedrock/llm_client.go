package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
)

// BedrockClient is an implementation of the LLMClient interface using Amazon
// Bedrock with Anthropic Claude models.
type BedrockClient struct {
	client    *bedrockruntime.Client
	modelID   string
	maxTokens int
	logger    *zap.Logger
}

// anthropicRequest is the Claude messages-API payload for Bedrock
type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float32            `json:"temperature,omitempty"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(client *bedrockruntime.Client, modelID string, maxTokens int, logger *zap.Logger) *BedrockClient {
	return &BedrockClient{
		client:    client,
		modelID:   modelID,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// ModelName returns the configured model identifier
func (c *BedrockClient) ModelName() string {
	return c.modelID
}

// Invoke sends a chat-completion request and returns the raw response text
func (c *BedrockClient) Invoke(ctx context.Context, messages []core.Message, opts core.InvokeOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	req := anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		Temperature:      opts.Temperature,
	}

	// Claude takes the system prompt as a top-level field
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			req.System = m.Content
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: "user", Content: m.Content})
	}
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("no user messages to send")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal Bedrock request: %w", err)
	}

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse Bedrock response: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty response from Bedrock")
	}

	c.logger.Debug("Bedrock completion", zap.String("model", c.modelID))
	return b.String(), nil
}
