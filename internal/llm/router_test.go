package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/notely/notely/internal/core"
)

type stubProvider struct {
	name       string
	configured bool
	reply      string
	err        error
	calls      int
}

func (s *stubProvider) Name() string       { return s.name }
func (s *stubProvider) IsConfigured() bool { return s.configured }
func (s *stubProvider) Complete(ctx context.Context, req Request) (string, error) {
	s.calls++
	return s.reply, s.err
}

// =============================================================================
// Router Tests
// =============================================================================

func TestRouter_Select(t *testing.T) {
	openai := &stubProvider{name: ProviderOpenAI}
	anthropic := &stubProvider{name: ProviderAnthropic, configured: true}
	cohere := &stubProvider{name: ProviderCohere, configured: true}

	tests := []struct {
		name      string
		preferred string
		want      string
	}{
		{"first configured", "", ProviderAnthropic},
		{"preferred configured", ProviderCohere, ProviderCohere},
		{"preferred unconfigured", ProviderOpenAI, ProviderAnthropic},
		{"unknown preferred", "mistral", ProviderAnthropic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(RouterConfig{
				Providers: []Provider{openai, anthropic, cohere},
				Preferred: tt.preferred,
			})
			got := router.Select()
			if got == nil {
				t.Fatal("Select() = nil")
			}
			if got.Name() != tt.want {
				t.Errorf("Select() = %q, want %q", got.Name(), tt.want)
			}
		})
	}
}

func TestRouter_CompleteUnconfigured(t *testing.T) {
	router := NewRouter(RouterConfig{Providers: []Provider{&stubProvider{name: ProviderOpenAI}}})

	if router.IsConfigured() {
		t.Error("IsConfigured() = true, want false")
	}

	_, err := router.Complete(context.Background(), UserPrompt("", "hi", 10, 0))
	if !errors.Is(err, core.ErrConfigurationMissing) {
		t.Errorf("err = %v, want ErrConfigurationMissing", err)
	}
	if got := router.GetStats().Unconfigured; got != 1 {
		t.Errorf("Unconfigured = %d, want 1", got)
	}
}

func TestRouter_CompleteSingleAttempt(t *testing.T) {
	failing := &stubProvider{name: ProviderOpenAI, configured: true, err: classify(ProviderOpenAI, 500, errors.New("boom"))}
	backup := &stubProvider{name: ProviderAnthropic, configured: true, reply: "never"}

	router := NewRouter(RouterConfig{Providers: []Provider{failing, backup}})
	_, err := router.Complete(context.Background(), UserPrompt("", "hi", 10, 0))

	if !errors.Is(err, core.ErrProviderTransport) {
		t.Errorf("err = %v, want ErrProviderTransport", err)
	}
	if failing.calls != 1 {
		t.Errorf("failing.calls = %d, want 1", failing.calls)
	}
	if backup.calls != 0 {
		t.Errorf("backup.calls = %d, want 0", backup.calls)
	}

	stats := router.GetStats()
	if stats.Failures[ProviderOpenAI] != 1 {
		t.Errorf("Failures[openai] = %d, want 1", stats.Failures[ProviderOpenAI])
	}
}

func TestRouter_CompleteSuccess(t *testing.T) {
	p := &stubProvider{name: ProviderOllama, configured: true, reply: "A short summary."}
	router := NewRouter(RouterConfig{Providers: []Provider{p}})

	resp, err := router.Complete(context.Background(), UserPrompt("sys", "text", 100, 0.3))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "A short summary." {
		t.Errorf("Content = %q, want %q", resp.Content, "A short summary.")
	}
	if resp.Provider != ProviderOllama {
		t.Errorf("Provider = %q, want %q", resp.Provider, ProviderOllama)
	}
	if got := router.GetStats().Requests[ProviderOllama]; got != 1 {
		t.Errorf("Requests[ollama] = %d, want 1", got)
	}
}

func TestRouter_HealthCheck(t *testing.T) {
	router := NewRouter(RouterConfig{Providers: []Provider{
		&stubProvider{name: ProviderOpenAI, configured: true},
		&stubProvider{name: ProviderCohere},
	}})

	health := router.HealthCheck(context.Background())
	if !health[ProviderOpenAI] || health[ProviderCohere] {
		t.Errorf("HealthCheck() = %v", health)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, core.ErrProviderAuth},
		{403, core.ErrProviderAuth},
		{404, core.ErrProviderAuth},
		{429, core.ErrProviderTransport},
		{500, core.ErrProviderTransport},
		{0, core.ErrProviderTransport},
	}

	for _, tt := range tests {
		err := classify("x", tt.status, errors.New("failed"))
		if !errors.Is(err, tt.want) {
			t.Errorf("classify(%d) = %v, want %v", tt.status, err, tt.want)
		}
	}
}
