// Package filter stores compiled content filters in memory, optionally
// backed by Redis or Valkey hashes.
package filter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/booruq/internal/domain"
	domfilter "github.com/kailas-cloud/booruq/internal/domain/filter"
	"github.com/kailas-cloud/booruq/internal/domain/query"
	"github.com/kailas-cloud/booruq/internal/logger"
)

// store is the consumer interface for filter persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/match.FilterRepository.
type Repo struct {
	mu        sync.RWMutex
	filters   map[string]*domfilter.Filter
	store     store
	keyPrefix string
}

// New creates a repository seeded with filters. Duplicate names are rejected.
func New(filters ...*domfilter.Filter) (*Repo, error) {
	r := &Repo{
		filters:   make(map[string]*domfilter.Filter, len(filters)),
		keyPrefix: domain.KeyPrefix,
	}
	for _, f := range filters {
		if err := r.Create(context.Background(), f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithKeyPrefix overrides the key namespace. Call before WithStore.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.keyPrefix = prefix
	}
	return r
}

// WithStore attaches persistence and loads previously stored filters.
// Seeded filters win over stored ones with the same name; stored filters
// that no longer compile are skipped with a warning.
func (r *Repo) WithStore(ctx context.Context, s store, opts ...query.Option) error {
	log := logger.FromContext(ctx)

	keys, err := s.Scan(ctx, r.key("*"))
	if err != nil {
		return fmt.Errorf("scan filters: %w", err)
	}
	var results []map[string]string
	if len(keys) > 0 {
		results, err = s.HGetAllMulti(ctx, keys)
		if err != nil {
			return fmt.Errorf("hgetall multi filters: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store = s
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		spec, err := specFromHash(m)
		if err != nil {
			log.Warn("Skipping stored filter", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		if _, ok := r.filters[spec.Name]; ok {
			log.Debug("Stored filter shadowed by configured filter", zap.String("filter", spec.Name))
			continue
		}
		f, err := domfilter.New(spec, opts...)
		if err != nil {
			log.Warn("Skipping stored filter", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		r.filters[f.Name()] = f
	}
	log.Info("Filters loaded from store", zap.Int("stored", len(keys)), zap.Int("total", len(r.filters)))
	return nil
}

// Create stores a filter under its name, writing through to the store if attached.
func (r *Repo) Create(ctx context.Context, f *domfilter.Filter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.filters[f.Name()]; ok {
		return domain.ErrFilterExists
	}
	if r.store != nil {
		hash, err := filterToHash(f)
		if err != nil {
			return err
		}
		if err := r.store.HSet(ctx, r.key(f.Name()), hash); err != nil {
			return fmt.Errorf("hset filter %s: %w", f.Name(), err)
		}
	}
	r.filters[f.Name()] = f
	return nil
}

// Get returns the filter with the given name.
func (r *Repo) Get(_ context.Context, name string) (*domfilter.Filter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.filters[name]
	if !ok {
		return nil, domain.ErrFilterNotFound
	}
	return f, nil
}

// List returns all filters sorted by name.
func (r *Repo) List(_ context.Context) ([]*domfilter.Filter, error) {
	r.mu.RLock()
	out := make([]*domfilter.Filter, 0, len(r.filters))
	for _, f := range r.filters {
		out = append(out, f)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// Delete removes a filter from memory and from the store if attached.
func (r *Repo) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.filters[name]; !ok {
		return domain.ErrFilterNotFound
	}
	if r.store != nil {
		if err := r.store.Del(ctx, r.key(name)); err != nil {
			return fmt.Errorf("del filter %s: %w", name, err)
		}
	}
	delete(r.filters, name)
	return nil
}

// Key pattern: {prefix}filter:{name}
func (r *Repo) key(name string) string {
	return strings.TrimSuffix(r.keyPrefix, ":") + ":filter:" + name
}
