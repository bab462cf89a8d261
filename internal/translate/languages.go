package translate

import (
	"strings"

	"golang.org/x/text/language"
)

// baseCodes maps the language names the UI offers to ISO 639-1 codes
var baseCodes = map[string]string{
	"Chinese":    "zh",
	"Spanish":    "es",
	"French":     "fr",
	"German":     "de",
	"Italian":    "it",
	"Portuguese": "pt",
	"Japanese":   "ja",
	"Korean":     "ko",
	"Russian":    "ru",
	"Arabic":     "ar",
}

// LanguageMap maps a human-readable language name to a provider's code
type LanguageMap map[string]string

// withOverrides returns a copy of the base table with overrides applied
func withOverrides(overrides map[string]string) LanguageMap {
	m := make(LanguageMap, len(baseCodes))
	for k, v := range baseCodes {
		m[k] = v
	}
	for k, v := range overrides {
		m[k] = v
	}
	return m
}

// Code resolves name through the table. Names the table does not know are
// accepted when they already are a BCP 47 tag, otherwise lowercased.
func (m LanguageMap) Code(name string) string {
	name = strings.TrimSpace(name)
	if code, ok := m[name]; ok {
		return code
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	if tag, err := language.Parse(name); err == nil {
		return tag.String()
	}
	return strings.ToLower(name)
}

// Languages lists the names every provider has a code for
func Languages() []string {
	return []string{"Arabic", "Chinese", "French", "German", "Italian", "Japanese", "Korean", "Portuguese", "Russian", "Spanish"}
}
