package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/notely/notely/internal/assist"
	"github.com/notely/notely/internal/llm"
	"github.com/notely/notely/internal/testutil"
	"github.com/notely/notely/internal/testutil/mockservers"
	"github.com/notely/notely/internal/translate"
)

// These tests run the real provider clients against mock upstreams.

func TestIntegration_TranslateFallsThroughEcho(t *testing.T) {
	primary := mockservers.NewTranslationMockServer(t)
	secondary := mockservers.NewTranslationMockServer(t)
	secondary.AddPhrase("fr", "The weather is lovely", "Il fait beau")

	chain := translate.NewChain(translate.ChainConfig{
		Providers: []translate.Provider{
			translate.NewMyMemoryClient(translate.MyMemoryConfig{BaseURL: primary.URL()}),
			translate.NewLibreTranslateClient(translate.LibreTranslateConfig{BaseURL: secondary.URL()}),
		},
	})

	srv, db := testServer(t, Config{Translator: chain})
	defer db.Close()

	rr := do(t, srv, "POST", "/translate", `{"text": "The weather is lovely", "target": "French"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decode(t, rr)
	if resp["translated"] != "Il fait beau" {
		t.Errorf("translated = %v, want Il fait beau", resp["translated"])
	}
	if resp["provider"] != "libretranslate" {
		t.Errorf("provider = %v, want libretranslate (mymemory echoed)", resp["provider"])
	}
	if primary.Hits("/get") != 1 {
		t.Errorf("mymemory hits = %d, want 1", primary.Hits("/get"))
	}
}

func TestIntegration_AssistWithOpenAI(t *testing.T) {
	upstream := mockservers.NewOpenAIMockServer(t, "Planning sync")

	router := llm.NewRouter(llm.RouterConfig{
		Providers: []llm.Provider{
			llm.NewOpenAIClient(llm.OpenAIConfig{APIKey: "test-key", BaseURL: upstream.URL()}),
		},
	})

	srv, db := testServer(t, Config{AI: router, Gateway: assist.NewGateway(router, nil)})
	defer db.Close()

	rr := do(t, srv, "POST", "/assist", `{"action": "title", "text": "We met to plan the next release and agreed on dates."}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode(t, rr)
	if resp["title"] != "Planning sync" {
		t.Errorf("title = %v, want Planning sync", resp["title"])
	}
	if resp["provider"] != llm.ProviderOpenAI || resp["fallback"] != false {
		t.Errorf("expected openai without fallback, got %v", resp)
	}

	requests := upstream.Requests()
	if len(requests) != 1 {
		t.Fatalf("upstream requests = %d, want 1", len(requests))
	}
	messages, _ := requests[0]["messages"].([]interface{})
	if len(messages) != 2 {
		t.Errorf("messages = %d, want system and user", len(messages))
	}

	// A failing provider degrades to the offline synthesizer after one attempt
	upstream.FailWith(http.StatusInternalServerError)
	rr = do(t, srv, "POST", "/assist", `{"action": "title", "text": "hi"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	resp = decode(t, rr)
	if resp["title"] != "Quick Note" || resp["fallback"] != true {
		t.Errorf("expected offline title, got %v", resp)
	}
	if got := len(upstream.Requests()); got != 2 {
		t.Errorf("upstream requests = %d, want 2 (no retries)", got)
	}

	// Health lists the configured provider
	rr = do(t, srv, "GET", "/api/health", "")
	var health struct {
		AI map[string]bool `json:"ai"`
	}
	json.Unmarshal(rr.Body.Bytes(), &health)
	if !health.AI[llm.ProviderOpenAI] {
		t.Errorf("health ai = %v, want openai configured", health.AI)
	}
}

func TestIntegration_ChatCarriesNoteContext(t *testing.T) {
	mock := &testutil.MockLLM{
		NameValue:  "mock",
		Configured: true,
		CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "Sure, here is a plan.", nil
		},
	}
	router := llm.NewRouter(llm.RouterConfig{Providers: []llm.Provider{mock}})

	srv, db := testServer(t, Config{AI: router})
	defer db.Close()

	body := `{"action": "chat", "context": "Trip to Lisbon in May", "messages": [{"role": "user", "content": "What should I pack?"}]}`
	rr := do(t, srv, "POST", "/api/genai/chat", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if decode(t, rr)["response"] != "Sure, here is a plan." {
		t.Errorf("unexpected body %s", rr.Body.String())
	}

	req, ok := mock.LastRequest()
	if !ok {
		t.Fatal("expected a request to reach the provider")
	}
	found := false
	for _, m := range req.Messages {
		if strings.Contains(m.Content, "Trip to Lisbon") {
			found = true
		}
	}
	if !found && !strings.Contains(req.System, "Trip to Lisbon") {
		t.Errorf("note context missing from request: %+v", req)
	}
}
