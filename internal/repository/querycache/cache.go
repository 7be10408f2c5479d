// Package querycache keeps compiled query trees in memory so repeated
// queries skip tokenizing and classification.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/booruq/internal/domain/query"
)

// compiler is the consumer interface for the wrapped compiler (ISP).
type compiler interface {
	Compile(ctx context.Context, src string) (*query.Query, error)
}

// CachedCompiler is an LRU of compiled queries with a time-to-live.
// Entries expire so relative dates ("3 days ago") are re-anchored to now.
type CachedCompiler struct {
	inner      compiler
	lru        *expirable.LRU[string, *query.Query]
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator holding at most size entries for ttl.
// A zero ttl keeps entries until evicted.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), may be nil.
func New(
	inner compiler,
	size int,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedCompiler {
	return &CachedCompiler{
		inner:      inner,
		lru:        expirable.NewLRU[string, *query.Query](size, nil, ttl),
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Compile returns a cached tree or compiles and stores it. Failures are not cached.
func (c *CachedCompiler) Compile(ctx context.Context, src string) (*query.Query, error) {
	key := cacheKey(src)

	if q, ok := c.lru.Get(key); ok {
		c.incCache("hit")
		return q, nil
	}
	c.incCache("miss")

	q, err := c.inner.Compile(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	if evicted := c.lru.Add(key, q); evicted {
		c.logger.Debug("Query cache evicted oldest entry", zap.Int("size", c.lru.Len()))
	}
	return q, nil
}

// Len returns the number of cached trees.
func (c *CachedCompiler) Len() int { return c.lru.Len() }

// Purge drops every cached tree.
func (c *CachedCompiler) Purge() { c.lru.Purge() }

func (c *CachedCompiler) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(src string) string {
	h := sha256.Sum256([]byte(src))
	return hex.EncodeToString(h[:])
}
