package translate

import (
	"context"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// CohereClient translates by prompting a Cohere chat model
type CohereClient struct {
	apiKey string
	model  string
	client *cohereclient.Client
}

// NewCohereClient creates a prompt-based translation provider.
// It is unconfigured when apiKey is empty.
func NewCohereClient(apiKey, model string) *CohereClient {
	if model == "" {
		model = "command-r"
	}
	c := &CohereClient{
		apiKey: apiKey,
		model:  model,
	}
	if apiKey != "" {
		c.client = cohereclient.NewClient(cohereclient.WithToken(apiKey))
	}
	return c
}

// Name implements Provider
func (c *CohereClient) Name() string { return "cohere" }

// IsConfigured implements Provider
func (c *CohereClient) IsConfigured() bool { return c.client != nil }

// Code implements Provider. The prompt wants the language name, so the
// "code" for this provider is the name itself.
func (c *CohereClient) Code(languageName string) string { return languageName }

// Translate implements Provider
func (c *CohereClient) Translate(ctx context.Context, text, languageName string) (string, error) {
	preamble := "You are a translator. Reply with the translation only, no quotes or commentary."
	temperature := 0.3
	maxTokens := 1000

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     fmt.Sprintf("Translate this text to %s: %s", languageName, text),
		Model:       &c.model,
		Preamble:    &preamble,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", transportError(c.Name(), "chat: %v", err)
	}

	return resp.GetText(), nil
}
