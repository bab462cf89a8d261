package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/notely/notely/internal/core"
)

// OpenAIClient talks to OpenAI or any OpenAI-compatible endpoint
type OpenAIClient struct {
	apiKey string
	model  string
	client openai.Client
}

// OpenAIConfig for the OpenAI client
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Optional, for compatible endpoints
	Model   string // Default: gpt-4o-mini
	Timeout time.Duration
}

// NewOpenAIClient creates an OpenAI client
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

// Name implements Provider
func (c *OpenAIClient) Name() string { return ProviderOpenAI }

// IsConfigured implements Provider
func (c *OpenAIClient) IsConfigured() bool { return c.apiKey != "" }

// Complete implements Provider
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", classify(c.Name(), apiErr.StatusCode, err)
		}
		return "", classify(c.Name(), 0, err)
	}

	if len(resp.Choices) == 0 {
		return "", classify(c.Name(), 0, fmt.Errorf("empty response"))
	}

	return resp.Choices[0].Message.Content, nil
}
