// Package translate turns note text into another language through a fixed
// phrase dictionary and an ordered chain of networked providers.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/notely/notely/internal/core"
)

// Provider is a networked translation service
type Provider interface {
	// Name identifies the provider in logs and attempts
	Name() string
	// IsConfigured reports whether the provider can be called at all.
	// Unconfigured providers are skipped, not failed.
	IsConfigured() bool
	// Code maps a language name to the provider's language code
	Code(languageName string) string
	// Translate sends text for translation into code
	Translate(ctx context.Context, text, code string) (string, error)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// isEcho reports whether a provider handed the input back untranslated
func isEcho(input, output string) bool {
	return normalize(input) == normalize(output)
}

func transportError(provider string, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w: %s", provider, core.ErrProviderTransport, fmt.Sprintf(format, args...))
}
