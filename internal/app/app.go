// Package app builds Notely's components from configuration. Both the
// daemon and the CLI wire themselves through it.
package app

import (
	"fmt"
	"strings"

	"github.com/notely/notely/internal/assist"
	"github.com/notely/notely/internal/config"
	"github.com/notely/notely/internal/llm"
	"github.com/notely/notely/internal/market"
	"github.com/notely/notely/internal/storage"
	"github.com/notely/notely/internal/translate"
)

// OpenDB opens the database in the data dir and applies migrations
func OpenDB(cfg *config.Config) (*storage.DB, error) {
	db, err := storage.Open(storage.Config{Path: cfg.DatabasePath()})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// NewTranslator builds the provider chain in its fixed order:
// Google, MyMemory, LibreTranslate, Cohere. Providers without
// credentials stay in the chain and are skipped at call time.
func NewTranslator(cfg *config.Config) *translate.Chain {
	tc := cfg.Translation
	var providers []translate.Provider

	providers = append(providers, translate.NewGoogleClient(translate.GoogleConfig{
		APIKey:      tc.Google.APIKey,
		AccessToken: tc.Google.AccessToken,
	}))

	if tc.MyMemory.Enabled {
		providers = append(providers, translate.NewMyMemoryClient(translate.MyMemoryConfig{
			BaseURL: tc.MyMemory.BaseURL,
			Email:   tc.MyMemory.Email,
			Timeout: config.Seconds(tc.MyMemory.TimeoutSec),
		}))
	}

	if tc.LibreTranslate.Enabled {
		providers = append(providers, translate.NewLibreTranslateClient(translate.LibreTranslateConfig{
			BaseURL: tc.LibreTranslate.BaseURL,
			APIKey:  tc.LibreTranslate.APIKey,
			Timeout: config.Seconds(tc.LibreTranslate.TimeoutSec),
		}))
	}

	if tc.Cohere.Enabled {
		providers = append(providers, translate.NewCohereClient(cfg.AI.CohereKey, tc.Cohere.Model))
	}

	return translate.NewChain(translate.ChainConfig{
		Providers: providers,
		Timeout:   config.Seconds(tc.TimeoutSec),
	})
}

// NewRouter builds the AI router. The model and base URL overrides apply
// to the preferred provider, or to OpenAI when none is preferred.
func NewRouter(cfg *config.Config) *llm.Router {
	ai := cfg.AI
	preferred := strings.ToLower(strings.TrimSpace(ai.Provider))
	timeout := config.Seconds(ai.TimeoutSec)

	target := preferred
	if target == "" {
		target = llm.ProviderOpenAI
	}
	override := func(name string) (model, baseURL string) {
		if name == target {
			return ai.Model, ai.BaseURL
		}
		return "", ""
	}

	openaiModel, openaiURL := override(llm.ProviderOpenAI)
	anthropicModel, anthropicURL := override(llm.ProviderAnthropic)
	cohereModel, _ := override(llm.ProviderCohere)
	ollamaModel, ollamaURL := override(llm.ProviderOllama)

	ollamaHost := ai.OllamaHost
	if ollamaURL != "" {
		ollamaHost = ollamaURL
	}

	return llm.NewRouter(llm.RouterConfig{
		Preferred: preferred,
		Providers: []llm.Provider{
			llm.NewOpenAIClient(llm.OpenAIConfig{
				APIKey:  ai.OpenAIKey,
				BaseURL: openaiURL,
				Model:   openaiModel,
				Timeout: timeout,
			}),
			llm.NewAnthropicClient(llm.AnthropicConfig{
				APIKey:  ai.AnthropicKey,
				BaseURL: anthropicURL,
				Model:   anthropicModel,
				Timeout: timeout,
			}),
			llm.NewCohereClient(llm.CohereConfig{
				APIKey: ai.CohereKey,
				Model:  cohereModel,
			}),
			llm.NewOllamaClient(llm.OllamaConfig{
				Host:    ollamaHost,
				Model:   ollamaModel,
				Timeout: timeout,
			}),
		},
	})
}

// NewGateway builds the assist gateway over router
func NewGateway(router *llm.Router) *assist.Gateway {
	return assist.NewGateway(router, nil)
}

// NewMarket builds the market client
func NewMarket(cfg *config.Config) *market.Client {
	return market.NewClient(market.Config{
		CoinGeckoURL: cfg.Market.CoinGeckoURL,
		StooqURL:     cfg.Market.StooqURL,
		CacheTTL:     config.Seconds(cfg.Market.CacheTTLSec),
		Timeout:      config.Seconds(cfg.Market.TimeoutSec),
	})
}
