package testutil

import (
	"context"
	"sync"

	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/llm"
)

// MockTranslator implements translate.Provider for testing.
type MockTranslator struct {
	NameValue     string
	Configured    bool
	TranslateFunc func(ctx context.Context, text, code string) (string, error)

	mu    sync.Mutex
	Calls []string
}

// Name implements translate.Provider.
func (m *MockTranslator) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

// IsConfigured implements translate.Provider.
func (m *MockTranslator) IsConfigured() bool { return m.Configured }

// Code implements translate.Provider; it passes the language name through.
func (m *MockTranslator) Code(languageName string) string { return languageName }

// Translate implements translate.Provider.
func (m *MockTranslator) Translate(ctx context.Context, text, code string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, code)
	}
	return "", core.ErrProviderTransport
}

// CallCount returns how many times Translate was called.
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockLLM implements llm.Provider for testing.
type MockLLM struct {
	NameValue    string
	Configured   bool
	CompleteFunc func(ctx context.Context, req llm.Request) (string, error)

	mu       sync.Mutex
	Requests []llm.Request
}

// Name implements llm.Provider.
func (m *MockLLM) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

// IsConfigured implements llm.Provider.
func (m *MockLLM) IsConfigured() bool { return m.Configured }

// Complete implements llm.Provider.
func (m *MockLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", core.ErrProviderTransport
}

// LastRequest returns the most recent request, if any.
func (m *MockLLM) LastRequest() (llm.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return llm.Request{}, false
	}
	return m.Requests[len(m.Requests)-1], true
}
