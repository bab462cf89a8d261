package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notely/notely/internal/core"
)

type fakeProvider struct {
	name       string
	configured bool
	reply      string
	err        error
	delay      time.Duration
	calls      int
	lastText   string
	lastCode   string
}

func (f *fakeProvider) Name() string                    { return f.name }
func (f *fakeProvider) IsConfigured() bool              { return f.configured }
func (f *fakeProvider) Code(languageName string) string { return withOverrides(nil).Code(languageName) }

func (f *fakeProvider) Translate(ctx context.Context, text, code string) (string, error) {
	f.calls++
	f.lastText = text
	f.lastCode = code
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func TestChainDictionaryShortCircuits(t *testing.T) {
	p := &fakeProvider{name: "net", configured: true, reply: "should not be used"}
	chain := NewChain(ChainConfig{Providers: []Provider{p}})

	res, err := chain.Translate(context.Background(), "Hello", "Spanish")
	require.NoError(t, err)
	assert.Equal(t, "Hola", res.Text)
	assert.Equal(t, "dictionary", res.Provider)
	assert.Zero(t, p.calls)
}

func TestChainFallsThrough(t *testing.T) {
	failing := &fakeProvider{name: "first", configured: true, err: errors.New("boom")}
	echo := &fakeProvider{name: "echo", configured: true, reply: "  GOOD NIGHT everyone "}
	skipped := &fakeProvider{name: "nokey", configured: false, reply: "x"}
	good := &fakeProvider{name: "good", configured: true, reply: "Buenas noches a todos"}

	chain := NewChain(ChainConfig{Providers: []Provider{failing, echo, skipped, good}})
	res, err := chain.Translate(context.Background(), "good night everyone", "Spanish")
	require.NoError(t, err)

	assert.Equal(t, "Buenas noches a todos", res.Text)
	assert.Equal(t, "good", res.Provider)
	assert.Equal(t, "es", good.lastCode)
	assert.Zero(t, skipped.calls)

	require.Len(t, res.Attempts, 5)
	assert.Equal(t, "dictionary", res.Attempts[0].Provider)
	assert.False(t, res.Attempts[1].Success)
	assert.False(t, res.Attempts[2].Success, "echoed input must not count as a translation")
	assert.True(t, res.Attempts[3].Skipped)
	assert.True(t, res.Attempts[4].Success)
}

func TestChainAllFail(t *testing.T) {
	echo := &fakeProvider{name: "echo", configured: true, reply: "see you tomorrow"}
	empty := &fakeProvider{name: "empty", configured: true, reply: "   "}

	chain := NewChain(ChainConfig{Providers: []Provider{echo, empty}})
	res, err := chain.Translate(context.Background(), "See you tomorrow", "French")

	require.ErrorIs(t, err, core.ErrTranslationUnavailable)
	require.NotNil(t, res)
	assert.Empty(t, res.Text)
	assert.Len(t, res.Attempts, 3)
}

func TestChainTimeout(t *testing.T) {
	slow := &fakeProvider{name: "slow", configured: true, reply: "tarde", delay: time.Second}
	fast := &fakeProvider{name: "fast", configured: true, reply: "rápido"}

	chain := NewChain(ChainConfig{Providers: []Provider{slow, fast}, Timeout: 20 * time.Millisecond})
	res, err := chain.Translate(context.Background(), "quickly now", "Spanish")
	require.NoError(t, err)

	assert.Equal(t, "fast", res.Provider)
	assert.Contains(t, res.Attempts[1].Error, "timed out")
}

func TestChainStripsLegacyPrefix(t *testing.T) {
	p := &fakeProvider{name: "net", configured: true, reply: "Guten Morgen allerseits"}
	chain := NewChain(ChainConfig{Providers: []Provider{p}})

	_, err := chain.Translate(context.Background(), "[German translation]: good morning everyone", "German")
	require.NoError(t, err)
	assert.Equal(t, "good morning everyone", p.lastText)

	res, err := chain.Translate(context.Background(), "[Spanish translation]: hello", "Spanish")
	require.NoError(t, err)
	assert.Equal(t, "Hola", res.Text)
}

func TestChainInvalidInput(t *testing.T) {
	chain := NewChain(ChainConfig{})

	_, err := chain.Translate(context.Background(), "   ", "Spanish")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = chain.Translate(context.Background(), "hello", "")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestChainProviders(t *testing.T) {
	chain := NewChain(ChainConfig{Providers: []Provider{
		&fakeProvider{name: "a", configured: true},
		&fakeProvider{name: "b"},
		&fakeProvider{name: "c", configured: true},
	}})
	assert.Equal(t, []string{"dictionary", "a", "c"}, chain.Providers())
}
