package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the LLMClient interface using Google
// Gemini.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	maxTokens int
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(apiKey string, modelName string, maxTokens int, logger *zap.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
		maxTokens: maxTokens,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ModelName returns the configured model identifier
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// Invoke sends a chat-completion request and returns the raw response text
func (c *GeminiClient) Invoke(ctx context.Context, messages []core.Message, opts core.InvokeOptions) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(opts.Temperature)
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	model.SetMaxOutputTokens(int32(maxTokens))

	// Gemini has no separate system role; fold system content into the prompt
	var prompt strings.Builder
	for _, m := range messages {
		prompt.WriteString(m.Content)
		prompt.WriteString("\n\n")
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content in Gemini response")
	}

	c.logger.Debug("Gemini completion", zap.String("model", c.modelName))
	return b.String(), nil
}
