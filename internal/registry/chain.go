package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// LookupHook observes every registry call made by a Chain.
type LookupHook func(registry string, verified bool, elapsed time.Duration)

// Chain tries registries in priority order and returns the first verified
// result. Results are cached per (registry, project) and each registry has
// its own token bucket.
type Chain struct {
	registries []Registry
	timeout    time.Duration
	cacheTTL   time.Duration
	cache      *gocache.Cache
	rps        rate.Limit
	burst      int
	onLookup   LookupHook

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option customises a Chain.
type Option func(*Chain)

// WithLookupHook registers a metrics callback.
func WithLookupHook(h LookupHook) Option {
	return func(c *Chain) { c.onLookup = h }
}

// NewChain builds a chain over registries, consulted in the given order.
func NewChain(cfg Config, registries []Registry, opts ...Option) *Chain {
	c := &Chain{
		registries: registries,
		timeout:    cfg.Timeout,
		cacheTTL:   cfg.CacheTTL,
		rps:        rate.Inf,
		burst:      cfg.Burst,
		limiters:   make(map[string]*rate.Limiter),
	}
	if cfg.RequestsPerSecond > 0 {
		c.rps = rate.Limit(cfg.RequestsPerSecond)
	}
	if c.burst <= 0 {
		c.burst = 1
	}
	if cfg.CacheTTL > 0 {
		c.cache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewDefaultChain returns the standard priority order: the HTTP registry
// (when a base URL is configured) followed by the simulated registries.
func NewDefaultChain(cfg Config, client *http.Client, opts ...Option) *Chain {
	var regs []Registry
	if cfg.BaseURL != "" {
		regs = append(regs, NewHTTPRegistry(Verra, cfg, client))
	}
	regs = append(regs, NewGoldStandard(), NewClimateActionReserve(), NewAmericanCarbonRegistry())
	return NewChain(cfg, regs, opts...)
}

// Verify looks the project up in one named registry.
func (c *Chain) Verify(ctx context.Context, projectID, registryName string) Result {
	for _, r := range c.registries {
		if r.Name() == registryName {
			ctx, cancel := c.withTimeout(ctx)
			defer cancel()
			return c.lookup(ctx, r, projectID)
		}
	}
	return Result{Registry: registryName, ProjectID: projectID, Error: fmt.Sprintf("unknown registry %q", registryName)}
}

// VerifyAny walks the registries in priority order and returns the first
// verified result. When none verifies, the result lists every error.
func (c *Chain) VerifyAny(ctx context.Context, projectID string) Result {
	if strings.TrimSpace(projectID) == "" {
		return Result{Error: "empty project id"}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	errs := make([]string, 0, len(c.registries))
	for _, r := range c.registries {
		res := c.lookup(ctx, r, projectID)
		if res.Verified {
			return res
		}
		errs = append(errs, r.Name()+": "+res.Error)
		if ctx.Err() != nil {
			break
		}
	}
	return Result{
		ProjectID: projectID,
		Error:     "no registry verified project: " + strings.Join(errs, "; "),
	}
}

func (c *Chain) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Chain) lookup(ctx context.Context, r Registry, projectID string) Result {
	key := r.Name() + "|" + projectID
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(Result)
		}
	}

	if err := c.limiter(r.Name()).Wait(ctx); err != nil {
		return Result{Registry: r.Name(), ProjectID: projectID, Error: fmt.Sprintf("rate limit: %v", err)}
	}

	start := time.Now()
	res := r.Lookup(ctx, projectID)
	if c.onLookup != nil {
		c.onLookup(r.Name(), res.Verified, time.Since(start))
	}

	// Only confirmations are cached so a registry outage is not remembered.
	if c.cache != nil && res.Verified {
		c.cache.SetDefault(key, res)
	}
	return res
}

func (c *Chain) limiter(name string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[name]
	if !ok {
		l = rate.NewLimiter(c.rps, c.burst)
		c.limiters[name] = l
	}
	return l
}
