package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/logging"
)

// RouterConfig configures the provider router
type RouterConfig struct {
	// Providers in selection order
	Providers []Provider

	// Preferred names the provider to use when it is configured
	Preferred string
}

// Router sends each request to exactly one configured provider. It never
// retries or tries a second provider; the assist gateway owns fallback.
type Router struct {
	providers []Provider
	preferred string
	log       *logging.Logger

	// Stats
	mu    sync.RWMutex
	stats RouterStats
}

// RouterStats tracks router usage
type RouterStats struct {
	Requests         map[string]int64 `json:"requests"`
	Failures         map[string]int64 `json:"failures"`
	Unconfigured     int64            `json:"unconfigured"`
	AverageLatencyMs int64            `json:"average_latency_ms"`
}

// NewRouter creates a new router
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		providers: cfg.Providers,
		preferred: cfg.Preferred,
		log:       logging.WithField("component", "llm"),
		stats: RouterStats{
			Requests: make(map[string]int64),
			Failures: make(map[string]int64),
		},
	}
}

// Response contains the completion and metadata
type Response struct {
	Content   string
	Provider  string
	LatencyMs int64
}

// Select returns the provider a request would use, or nil when none is
// configured. Configuration is checked on every call.
func (r *Router) Select() Provider {
	if r.preferred != "" {
		for _, p := range r.providers {
			if p.Name() == r.preferred && p.IsConfigured() {
				return p
			}
		}
	}
	for _, p := range r.providers {
		if p.IsConfigured() {
			return p
		}
	}
	return nil
}

// IsConfigured reports whether any provider can be used
func (r *Router) IsConfigured() bool {
	return r.Select() != nil
}

// Complete sends req to the selected provider, once
func (r *Router) Complete(ctx context.Context, req Request) (*Response, error) {
	provider := r.Select()
	if provider == nil {
		r.mu.Lock()
		r.stats.Unconfigured++
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: no AI provider credential", core.ErrConfigurationMissing)
	}

	start := time.Now()
	content, err := provider.Complete(ctx, req)
	latency := time.Since(start).Milliseconds()

	r.updateStats(provider.Name(), latency, err)
	if err != nil {
		r.log.WithField("provider", provider.Name()).Warn("completion failed after %dms: %v", latency, err)
		return nil, err
	}

	return &Response{
		Content:   content,
		Provider:  provider.Name(),
		LatencyMs: latency,
	}, nil
}

// updateStats updates router statistics
func (r *Router) updateStats(provider string, latencyMs int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Requests[provider]++
	if err != nil {
		r.stats.Failures[provider]++
	}

	// Update average latency (simple moving average)
	var total int64
	for _, n := range r.stats.Requests {
		total += n
	}
	r.stats.AverageLatencyMs = (r.stats.AverageLatencyMs*(total-1) + latencyMs) / total
}

// GetStats returns a copy of the router statistics
func (r *Router) GetStats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := RouterStats{
		Requests:         make(map[string]int64, len(r.stats.Requests)),
		Failures:         make(map[string]int64, len(r.stats.Failures)),
		Unconfigured:     r.stats.Unconfigured,
		AverageLatencyMs: r.stats.AverageLatencyMs,
	}
	for k, v := range r.stats.Requests {
		out.Requests[k] = v
	}
	for k, v := range r.stats.Failures {
		out.Failures[k] = v
	}
	return out
}

// HealthCheck reports which providers are configured
func (r *Router) HealthCheck(ctx context.Context) map[string]bool {
	health := make(map[string]bool, len(r.providers))
	for _, p := range r.providers {
		health[p.Name()] = p.IsConfigured()
	}
	return health
}
