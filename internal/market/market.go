// Package market fetches crypto and stock quotes for note widgets.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/logging"
)

// Kind selects the upstream source
type Kind string

const (
	KindCrypto Kind = "crypto"
	KindStock  Kind = "stock"
)

// Client looks up quotes from CoinGecko and Stooq, caching each
// (kind, symbol) pair for the configured TTL.
type Client struct {
	coinGeckoURL string
	stooqURL     string
	ttl          time.Duration
	httpClient   *http.Client
	now          func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
	group singleflight.Group
}

type cacheEntry struct {
	data    json.RawMessage
	expires time.Time
}

// Config for the market client
type Config struct {
	CoinGeckoURL string        // default: https://api.coingecko.com/api/v3
	StooqURL     string        // default: https://stooq.com
	CacheTTL     time.Duration // default: 60s
	Timeout      time.Duration // default: 10s
}

// NewClient creates a market client
func NewClient(cfg Config) *Client {
	if cfg.CoinGeckoURL == "" {
		cfg.CoinGeckoURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.StooqURL == "" {
		cfg.StooqURL = "https://stooq.com"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 60 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		coinGeckoURL: strings.TrimRight(cfg.CoinGeckoURL, "/"),
		stooqURL:     strings.TrimRight(cfg.StooqURL, "/"),
		ttl:          cfg.CacheTTL,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		now:          time.Now,
		cache:        make(map[string]cacheEntry),
	}
}

// Lookup returns the upstream JSON payload for symbol.
func (c *Client) Lookup(ctx context.Context, kind Kind, symbol string) (json.RawMessage, error) {
	var endpoint string
	switch kind {
	case KindCrypto:
		endpoint = c.coinGeckoURL + "/simple/price?" + url.Values{
			"ids":           {symbol},
			"vs_currencies": {"usd"},
		}.Encode()
	case KindStock:
		// Stooq expects its parameters in this exact order
		endpoint = c.stooqURL + "/q/l/?s=" + url.QueryEscape(symbol) + "&f=sd2t2ohlcv&h&e=json"
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedMarket, kind)
	}

	key := string(kind) + "|" + symbol
	if data, ok := c.cached(key); ok {
		return data, nil
	}

	// The shared fetch outlives any one caller; httpClient.Timeout bounds it
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		data, err := c.fetch(fetchCtx, endpoint)
		if err != nil {
			return nil, err
		}
		c.store(key, data)
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			logging.Warn("market lookup %s failed: %v", key, res.Err)
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// store caches data for key and drops every expired entry
func (c *Client) store(key string, data json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.cache {
		if !now.Before(entry.expires) {
			delete(c.cache, k)
		}
	}
	c.cache[key] = cacheEntry{data: data, expires: now.Add(c.ttl)}
}

// cacheSize returns the number of cached entries, expired ones included
func (c *Client) cacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func (c *Client) cached(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.cache, key)
		return nil, false
	}
	return entry.data, true
}

func (c *Client) fetch(ctx context.Context, endpoint string) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", core.ErrProviderTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream status %d: %s", core.ErrProviderTransport, resp.StatusCode, string(body))
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: upstream returned invalid JSON", core.ErrProviderTransport)
	}

	return json.RawMessage(body), nil
}
