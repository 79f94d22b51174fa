package openai

import (
	"context"
	"fmt"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the LLMClient interface using OpenAI
type OpenAIClient struct {
	client    *openai.Client
	modelName string
	maxTokens int
	logger    *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string, modelName string, maxTokens int, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// ModelName returns the configured model identifier
func (c *OpenAIClient) ModelName() string {
	return c.modelName
}

// Invoke sends a chat-completion request and returns the raw response text
func (c *OpenAIClient) Invoke(ctx context.Context, messages []core.Message, opts core.InvokeOptions) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == core.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	req := openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    chatMessages,
		MaxTokens:   maxTokens,
		Temperature: opts.Temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	c.logger.Debug("OpenAI completion",
		zap.String("model", c.modelName),
		zap.String("id", resp.ID),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}
