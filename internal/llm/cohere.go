package llm

import (
	"context"
	"errors"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	coherecore "github.com/cohere-ai/cohere-go/v2/core"

	"github.com/notely/notely/internal/core"
)

// CohereClient talks to the Cohere chat API
type CohereClient struct {
	apiKey string
	model  string
	client *cohereclient.Client
}

// CohereConfig for the Cohere client
type CohereConfig struct {
	APIKey string
	Model  string // Default: command-r
}

// NewCohereClient creates a Cohere client
func NewCohereClient(cfg CohereConfig) *CohereClient {
	if cfg.Model == "" {
		cfg.Model = "command-r"
	}
	return &CohereClient{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: cohereclient.NewClient(cohereclient.WithToken(cfg.APIKey)),
	}
}

// Name implements Provider
func (c *CohereClient) Name() string { return ProviderCohere }

// IsConfigured implements Provider
func (c *CohereClient) IsConfigured() bool { return c.apiKey != "" }

// Complete implements Provider. Cohere takes the last user message as the
// prompt and earlier turns as chat history.
func (c *CohereClient) Complete(ctx context.Context, req Request) (string, error) {
	var history []*cohere.Message
	var message string
	preamble := req.System

	for i, m := range req.Messages {
		last := i == len(req.Messages)-1
		switch {
		case m.Role == core.RoleSystem:
			preamble = strings.TrimSpace(preamble + "\n\n" + m.Content)
		case last && m.Role == core.RoleUser:
			message = m.Content
		case m.Role == core.RoleAssistant:
			history = append(history, &cohere.Message{Role: "CHATBOT", Chatbot: &cohere.ChatMessage{Message: m.Content}})
		default:
			history = append(history, &cohere.Message{Role: "USER", User: &cohere.ChatMessage{Message: m.Content}})
		}
	}

	chatReq := &cohere.ChatRequest{
		Message:     message,
		Model:       &c.model,
		ChatHistory: history,
		Temperature: &req.Temperature,
	}
	if preamble != "" {
		chatReq.Preamble = &preamble
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = &req.MaxTokens
	}

	resp, err := c.client.Chat(ctx, chatReq)
	if err != nil {
		var apiErr *coherecore.APIError
		if errors.As(err, &apiErr) {
			return "", classify(c.Name(), apiErr.StatusCode, err)
		}
		return "", classify(c.Name(), 0, err)
	}

	return resp.GetText(), nil
}
