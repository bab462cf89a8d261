package translate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/logging"
)

// DefaultTimeout bounds a single provider attempt
const DefaultTimeout = 15 * time.Second

// prefixPattern matches the "[Spanish translation]: " marker older clients
// left in front of text
var prefixPattern = regexp.MustCompile(`(?i)^\[.*?\s+translation\]:\s*`)

// Chain tries the dictionary and then each provider in order until one
// produces a real translation
type Chain struct {
	providers []Provider
	timeout   time.Duration
	log       *logging.Logger
}

// ChainConfig configures a chain
type ChainConfig struct {
	Providers []Provider    // Tried in order after the dictionary
	Timeout   time.Duration // Per-attempt timeout (default 15s)
}

// NewChain creates a translation chain
func NewChain(cfg ChainConfig) *Chain {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Chain{
		providers: cfg.Providers,
		timeout:   cfg.Timeout,
		log:       logging.WithField("component", "translate"),
	}
}

// Providers returns the names of the configured providers, in order
func (c *Chain) Providers() []string {
	names := []string{"dictionary"}
	for _, p := range c.providers {
		if p.IsConfigured() {
			names = append(names, p.Name())
		}
	}
	return names
}

// Result is a successful translation and how it was produced
type Result struct {
	Text     string                    `json:"translated"`
	Provider string                    `json:"provider"`
	Attempts []core.TranslationAttempt `json:"attempts"`
}

// Translate translates text into the named language. It fails with
// core.ErrTranslationUnavailable once every step has failed; it never
// returns the input dressed up as a translation.
func (c *Chain) Translate(ctx context.Context, text, languageName string) (*Result, error) {
	clean := strings.TrimSpace(text)
	if loc := prefixPattern.FindStringIndex(clean); loc != nil {
		clean = strings.TrimSpace(clean[loc[1]:])
	}
	languageName = strings.TrimSpace(languageName)

	if clean == "" {
		return nil, fmt.Errorf("%w: text is required for translation", core.ErrInvalidInput)
	}
	if languageName == "" {
		return nil, fmt.Errorf("%w: target language is required for translation", core.ErrInvalidInput)
	}

	result := &Result{}

	if translated, ok := Lookup(clean, languageName); ok {
		result.Attempts = append(result.Attempts, core.TranslationAttempt{
			Provider: "dictionary", Success: true, TranslatedText: translated,
		})
		result.Text = translated
		result.Provider = "dictionary"
		c.log.Debug("dictionary hit for %q -> %s", clean, languageName)
		return result, nil
	}
	result.Attempts = append(result.Attempts, core.TranslationAttempt{Provider: "dictionary", Error: "no phrase match"})

	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		attempt := c.attempt(ctx, p, clean, languageName)
		result.Attempts = append(result.Attempts, attempt)
		if attempt.Success {
			result.Text = attempt.TranslatedText
			result.Provider = attempt.Provider
			return result, nil
		}
	}

	c.log.Warn("all translation providers failed for target %s", languageName)
	return result, core.ErrTranslationUnavailable
}

func (c *Chain) attempt(ctx context.Context, p Provider, text, languageName string) core.TranslationAttempt {
	attempt := core.TranslationAttempt{Provider: p.Name()}
	log := c.log.WithField("provider", p.Name())

	if !p.IsConfigured() {
		attempt.Skipped = true
		attempt.Error = core.ErrConfigurationMissing.Error()
		log.Debug("skipped: not configured")
		return attempt
	}

	code := p.Code(languageName)
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	translated, err := p.Translate(actx, text, code)
	attempt.Duration = time.Since(start)

	switch {
	case err != nil:
		if errors.Is(actx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: timed out after %s", core.ErrProviderTransport, c.timeout)
		}
		attempt.Error = err.Error()
		log.Warn("translation to %s failed: %v", code, err)
	case strings.TrimSpace(translated) == "":
		attempt.Error = "empty translation"
		log.Warn("translation to %s was empty", code)
	case isEcho(text, translated):
		attempt.Error = "provider returned the input untranslated"
		log.Warn("translation to %s echoed the input", code)
	default:
		attempt.Success = true
		attempt.TranslatedText = strings.TrimSpace(translated)
		log.Debug("translated to %s in %s", code, attempt.Duration)
	}

	return attempt
}
