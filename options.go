package booruq

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "", "valkey" or "redis"
	addrs     []string
	password   string
	keyPrefix  string
	standalone bool

	filters []FilterSpec

	cacheSize      int
	cacheTTL       time.Duration
	maxImages      int
	maxQueryLength int
	clock          func() time.Time

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey persists filters added at runtime in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis persists filters added at runtime in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithStandalone disables cluster topology discovery.
// Use for single Valkey/Redis instances.
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithKeyPrefix sets the namespace for stored filters. Default: "booruq:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithFilters registers filters at construction. They take precedence
// over stored filters with the same name.
func WithFilters(specs ...FilterSpec) Option {
	return optionFunc(func(c *clientConfig) {
		c.filters = append(c.filters, specs...)
	})
}

// WithCacheSize enables an LRU of compiled queries. Zero disables it.
func WithCacheSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheSize = size
	})
}

// WithCacheTTL bounds how long a compiled query is reused.
// Relative dates are re-anchored on recompile. Default: 5 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithLimits caps images per call and query length in characters.
// Zero leaves a limit off.
func WithLimits(maxImages, maxQueryLength int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxImages = maxImages
		c.maxQueryLength = maxQueryLength
	})
}

// WithClock sets the source of "now" for relative dates.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		c.clock = now
	})
}

// WithLogger sets a structured logger for SDK operations.
// When set, the SDK logs operation failures at Warn level
// and successful completions at Debug level.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus enables Prometheus metrics collection.
// Registers counters and histograms for every SDK operation.
// Use prometheus.DefaultRegisterer or a custom registry.
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
