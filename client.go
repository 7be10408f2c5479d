package booruq

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/booruq/internal/db"
	dbRedis "github.com/kailas-cloud/booruq/internal/db/redis"
	domfilter "github.com/kailas-cloud/booruq/internal/domain/filter"
	"github.com/kailas-cloud/booruq/internal/domain/query"
	filterrepo "github.com/kailas-cloud/booruq/internal/repository/filter"
	"github.com/kailas-cloud/booruq/internal/repository/querycache"
	matchuc "github.com/kailas-cloud/booruq/internal/usecase/match"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 5 * time.Minute
)

// Client matches queries and applies filters. It is safe for concurrent use.
type Client struct {
	store db.Store
	repo  *filterrepo.Repo
	svc   *matchuc.Service
	obs   *observer
}

// New creates a Client. With WithRedis or WithValkey it connects and loads
// stored filters before returning.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return wireClient(context.Background(), nil, cfg)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("booruq: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("booruq: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("booruq: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var qopts []query.Option
	if cfg.clock != nil {
		qopts = append(qopts, query.WithClock(cfg.clock))
	}

	filters := make([]*domfilter.Filter, 0, len(cfg.filters))
	for _, spec := range cfg.filters {
		f, err := domfilter.New(spec, qopts...)
		if err != nil {
			return nil, fmt.Errorf("booruq: filter %q: %w", spec.Name, err)
		}
		filters = append(filters, f)
	}
	repo, err := filterrepo.New(filters...)
	if err != nil {
		return nil, fmt.Errorf("booruq: %w", err)
	}
	if cfg.keyPrefix != "" {
		repo = repo.WithKeyPrefix(cfg.keyPrefix)
	}
	if store != nil {
		if err := repo.WithStore(ctx, store, qopts...); err != nil {
			return nil, fmt.Errorf("booruq: load filters: %w", err)
		}
	}

	var compiler matchuc.Compiler = matchuc.NewCompiler(qopts...)
	if cfg.cacheSize > 0 {
		ttl := cfg.cacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		compiler = querycache.New(compiler, cfg.cacheSize, ttl, obs.cacheCounter(), zap.NewNop())
	}

	svc := matchuc.New(compiler, repo, matchuc.Limits{
		MaxImages:      cfg.maxImages,
		MaxQueryLength: cfg.maxQueryLength,
	}).WithQueryOptions(qopts...)

	return &Client{store: store, repo: repo, svc: svc, obs: obs}, nil
}

// Close releases the database connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity. Without a database it always succeeds.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Ping(ctx)
}

// Match evaluates src against every image in order.
func (c *Client) Match(ctx context.Context, src string, images []Image, snap Snapshot) (_ []Result, err error) {
	defer func(start time.Time) { c.obs.observe("match", start, err) }(time.Now())

	outcomes, err := c.svc.Match(ctx, src, images, snap)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(outcomes))
	for i, o := range outcomes {
		out[i] = Result{ImageID: o.ImageID, Matched: o.Matched}
	}
	return out, nil
}

// Classify applies the named filter to every image.
func (c *Client) Classify(ctx context.Context, filter string, images []Image, snap Snapshot) (_ []Verdict, err error) {
	defer func(start time.Time) { c.obs.observe("classify", start, err) }(time.Now())

	verdicts, err := c.svc.Classify(ctx, filter, images, snap)
	if err != nil {
		return nil, err
	}
	out := make([]Verdict, len(verdicts))
	for i, v := range verdicts {
		out[i] = Verdict{ImageID: v.ImageID, Visibility: v.Visibility}
	}
	return out, nil
}

// Validate returns nil when src compiles, or an error wrapping *ParseError.
func (c *Client) Validate(ctx context.Context, src string) (err error) {
	defer func(start time.Time) { c.obs.observe("validate", start, err) }(time.Now())
	return c.svc.Validate(ctx, src)
}

// Explain returns the expression tree src compiles to.
func (c *Client) Explain(ctx context.Context, src string) (_ string, err error) {
	defer func(start time.Time) { c.obs.observe("explain", start, err) }(time.Now())
	return c.svc.Explain(ctx, src)
}

// AddFilter compiles spec and registers it, persisting it when a database is configured.
func (c *Client) AddFilter(ctx context.Context, spec FilterSpec) (err error) {
	defer func(start time.Time) { c.obs.observe("add_filter", start, err) }(time.Now())

	_, err = c.svc.CreateFilter(ctx, spec)
	return err
}

// RemoveFilter unregisters the named filter.
func (c *Client) RemoveFilter(ctx context.Context, name string) (err error) {
	defer func(start time.Time) { c.obs.observe("remove_filter", start, err) }(time.Now())
	return c.svc.DeleteFilter(ctx, name)
}

// Filters lists registered filters sorted by name.
func (c *Client) Filters(ctx context.Context) ([]Filter, error) {
	list, err := c.svc.Filters(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Filter, len(list))
	for i, f := range list {
		out[i] = Filter{Spec: f.Spec()}
	}
	return out, nil
}
