package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MyMemoryClient calls the MyMemory translation API
type MyMemoryClient struct {
	baseURL    string
	email      string
	languages  LanguageMap
	httpClient *http.Client
}

// MyMemoryConfig for the MyMemory client
type MyMemoryConfig struct {
	BaseURL string        // API base URL (default: https://api.mymemory.translated.net)
	Email   string        // Optional contact address, raises the daily quota
	Timeout time.Duration // Request timeout (default: 10s)
}

// NewMyMemoryClient creates a MyMemory client
func NewMyMemoryClient(cfg MyMemoryConfig) *MyMemoryClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mymemory.translated.net"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &MyMemoryClient{
		baseURL:   cfg.BaseURL,
		email:     cfg.Email,
		languages: withOverrides(map[string]string{"Chinese": "zh-CN"}),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// myMemoryResponse is the subset of the /get response we read.
// responseStatus is a number on success but a string on some errors.
type myMemoryResponse struct {
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
	ResponseData    struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

// Name implements Provider
func (c *MyMemoryClient) Name() string { return "mymemory" }

// IsConfigured implements Provider; MyMemory needs no key
func (c *MyMemoryClient) IsConfigured() bool { return c.baseURL != "" }

// Code implements Provider
func (c *MyMemoryClient) Code(languageName string) string { return c.languages.Code(languageName) }

// Translate implements Provider
func (c *MyMemoryClient) Translate(ctx context.Context, text, code string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", "en|"+code)
	if c.email != "" {
		q.Set("de", c.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", transportError(c.Name(), "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(c.Name(), "failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", transportError(c.Name(), "API error %d: %s", resp.StatusCode, string(body))
	}

	var data myMemoryResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", transportError(c.Name(), "failed to decode response: %v", err)
	}

	status := bytes.Trim(data.ResponseStatus, `"`)
	if string(status) != "200" {
		return "", transportError(c.Name(), "status %s: %s", string(status), data.ResponseDetails)
	}

	return data.ResponseData.TranslatedText, nil
}
