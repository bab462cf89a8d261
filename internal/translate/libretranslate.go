package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LibreTranslateClient calls a LibreTranslate instance
type LibreTranslateClient struct {
	baseURL    string
	apiKey     string
	languages  LanguageMap
	httpClient *http.Client
}

// LibreTranslateConfig for the LibreTranslate client
type LibreTranslateConfig struct {
	BaseURL string        // Instance URL (default: https://libretranslate.de)
	APIKey  string        // Optional; public instances may require one
	Timeout time.Duration // Request timeout (default: 15s)
}

// NewLibreTranslateClient creates a LibreTranslate client
func NewLibreTranslateClient(cfg LibreTranslateConfig) *LibreTranslateClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://libretranslate.de"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &LibreTranslateClient{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		languages: withOverrides(nil),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Name implements Provider
func (c *LibreTranslateClient) Name() string { return "libretranslate" }

// IsConfigured implements Provider
func (c *LibreTranslateClient) IsConfigured() bool { return c.baseURL != "" }

// Code implements Provider
func (c *LibreTranslateClient) Code(languageName string) string {
	return c.languages.Code(languageName)
}

// Translate implements Provider
func (c *LibreTranslateClient) Translate(ctx context.Context, text, code string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: "en",
		Target: code,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", transportError(c.Name(), "request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(c.Name(), "failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", transportError(c.Name(), "API error %d: %s", resp.StatusCode, string(respBody))
	}

	var data libreResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", transportError(c.Name(), "failed to decode response: %v", err)
	}
	if data.Error != "" {
		return "", transportError(c.Name(), "%s", data.Error)
	}

	return data.TranslatedText, nil
}
