package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/notely/notely/internal/core"
)

// OllamaClient handles Ollama API calls for local LLM inference
type OllamaClient struct {
	host   string
	model  string
	client *api.Client
}

// OllamaConfig for Ollama client
type OllamaConfig struct {
	Host    string        // Ollama API URL; empty leaves the provider unconfigured
	Model   string        // Chat model (default: llama3.2)
	Timeout time.Duration // Request timeout
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	c := &OllamaClient{
		host:  cfg.Host,
		model: cfg.Model,
	}
	if cfg.Host != "" {
		base, err := url.Parse(cfg.Host)
		if err == nil && base.Scheme != "" {
			c.client = api.NewClient(base, &http.Client{Timeout: cfg.Timeout})
		}
	}
	return c
}

// Name implements Provider
func (c *OllamaClient) Name() string { return ProviderOllama }

// IsConfigured reports whether a host was given and parsed. Ollama is never
// assumed to be running locally.
func (c *OllamaClient) IsConfigured() bool { return c.client != nil }

// Complete implements Provider
func (c *OllamaClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, api.Message{Role: string(core.RoleSystem), Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: string(m.Role), Content: m.Content})
	}

	stream := false
	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	var out strings.Builder
	err := c.client.Chat(ctx, &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return "", classify(c.Name(), statusErr.StatusCode, err)
		}
		return "", classify(c.Name(), 0, err)
	}

	if out.Len() == 0 {
		return "", classify(c.Name(), 0, fmt.Errorf("empty response"))
	}
	return out.String(), nil
}
