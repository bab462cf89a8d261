package translate

import (
	"context"
	"fmt"
	"html"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	gtranslate "google.golang.org/api/translate/v2"
)

// GoogleClient calls Google Cloud Translation v2
type GoogleClient struct {
	cfg       GoogleConfig
	languages LanguageMap

	mu      sync.Mutex
	service *gtranslate.Service
}

// GoogleConfig for the Google client. One of APIKey or AccessToken enables it.
type GoogleConfig struct {
	APIKey      string
	AccessToken string
	Endpoint    string // Override for tests
}

// NewGoogleClient creates a Google translation client. The service is built
// lazily on first use so an unconfigured client costs nothing.
func NewGoogleClient(cfg GoogleConfig) *GoogleClient {
	return &GoogleClient{
		cfg:       cfg,
		languages: withOverrides(map[string]string{"Chinese": "zh-CN"}),
	}
}

// Name implements Provider
func (c *GoogleClient) Name() string { return "google" }

// IsConfigured implements Provider
func (c *GoogleClient) IsConfigured() bool {
	return c.cfg.APIKey != "" || c.cfg.AccessToken != ""
}

// Code implements Provider
func (c *GoogleClient) Code(languageName string) string { return c.languages.Code(languageName) }

func (c *GoogleClient) serviceFor(ctx context.Context) (*gtranslate.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.service != nil {
		return c.service, nil
	}

	var opts []option.ClientOption
	if c.cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(c.cfg.APIKey))
	} else {
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: c.cfg.AccessToken,
			TokenType:   "Bearer",
		})))
	}
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}

	// The service must outlive the per-attempt context
	svc, err := gtranslate.NewService(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate service: %w", err)
	}
	c.service = svc
	return svc, nil
}

// Translate implements Provider
func (c *GoogleClient) Translate(ctx context.Context, text, code string) (string, error) {
	svc, err := c.serviceFor(ctx)
	if err != nil {
		return "", err
	}

	resp, err := svc.Translations.List([]string{text}, code).
		Source("en").
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", transportError(c.Name(), "translate: %v", err)
	}
	if len(resp.Translations) == 0 {
		return "", transportError(c.Name(), "no translations in response")
	}

	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}
