// Package llm provides the AI text-generation providers behind the assist
// gateway and a router that picks the configured one.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/notely/notely/internal/core"
)

// Names of the supported providers, in default selection order
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderCohere    = "cohere"
	ProviderOllama    = "ollama"
)

// Provider is a chat-completion backend
type Provider interface {
	Name() string
	// IsConfigured reports whether a credential (or host) is present
	IsConfigured() bool
	// Complete sends one request and returns the first completion's text
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a chat-style completion request
type Request struct {
	System      string
	Messages    []core.Message
	MaxTokens   int
	Temperature float64
}

// UserPrompt builds a request with a single user message
func UserPrompt(system, prompt string, maxTokens int, temperature float64) Request {
	return Request{
		System:      system,
		Messages:    []core.Message{{Role: core.RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// classify wraps a provider failure as ErrProviderAuth for credential and
// model problems, ErrProviderTransport for everything else. status is 0 when
// no HTTP response was received.
func classify(provider string, status int, err error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return fmt.Errorf("%s: %w: %v", provider, core.ErrProviderAuth, err)
	}
	return fmt.Errorf("%s: %w: %v", provider, core.ErrProviderTransport, err)
}
