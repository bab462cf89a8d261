package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/notely/notely/internal/core"
)

// AnthropicClient talks to the Anthropic Messages API
type AnthropicClient struct {
	apiKey string
	model  string
	client anthropic.Client
}

// AnthropicConfig for the Anthropic client
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string // Default: claude-3-5-haiku-latest
	Timeout time.Duration
}

// NewAnthropicClient creates an Anthropic client
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
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

	return &AnthropicClient{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: anthropic.NewClient(opts...),
	}
}

// Name implements Provider
func (c *AnthropicClient) Name() string { return ProviderAnthropic }

// IsConfigured implements Provider
func (c *AnthropicClient) IsConfigured() bool { return c.apiKey != "" }

// Complete implements Provider
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	system := req.System
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleSystem:
			// The Messages API takes system text out of band
			system = strings.TrimSpace(system + "\n\n" + m.Content)
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", classify(c.Name(), apiErr.StatusCode, err)
		}
		return "", classify(c.Name(), 0, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		}
	}
	if text.Len() == 0 {
		return "", classify(c.Name(), 0, fmt.Errorf("empty response"))
	}

	return text.String(), nil
}
