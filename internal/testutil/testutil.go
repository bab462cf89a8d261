// Package testutil provides shared testing utilities for Notely.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/notely/notely/internal/config"
	"github.com/notely/notely/internal/storage"
)

// TestDB opens a migrated in-memory database, closed with the test.
func TestDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(storage.Config{InMemory: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// TestNoteStore returns a note store over a fresh TestDB.
func TestNoteStore(t *testing.T) *storage.NoteStore {
	t.Helper()
	return storage.NewNoteStore(TestDB(t))
}

// TestConfig returns defaults that never reach the network: the data dir is
// a temp dir, keyless translation providers are disabled and no provider
// credential is set.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Translation.MyMemory.Enabled = false
	cfg.Translation.LibreTranslate.Enabled = false
	cfg.Translation.Cohere.Enabled = false
	cfg.Reminders.Enabled = false
	return cfg
}

// providerEnv are the conventional credential variables config.Load honours
var providerEnv = []string{
	"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "COHERE_API_KEY", "OLLAMA_HOST",
	"GOOGLE_TRANSLATE_API_KEY", "GOOGLE_TRANSLATE_ACCESS_TOKEN", "LIBRETRANSLATE_API_KEY",
	"NOTELY_AUTH_JWT_SECRET",
}

// ClearProviderEnv blanks provider credentials in the environment for the
// duration of the test, so a developer's shell cannot switch on a real
// provider.
func ClearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range providerEnv {
		t.Setenv(key, "")
	}
}

// TestContext returns a context cancelled when the test completes.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// RequireEnv returns the value of an environment variable, skipping the
// test when it is unset. Live provider tests use it.
func RequireEnv(t *testing.T, key string) string {
	t.Helper()
	val := os.Getenv(key)
	if val == "" {
		t.Skipf("skipping: %s not set", key)
	}
	return val
}
