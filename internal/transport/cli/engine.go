package cli

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/booruq/internal/config"
	domfilter "github.com/kailas-cloud/booruq/internal/domain/filter"
	"github.com/kailas-cloud/booruq/internal/domain/query"
	"github.com/kailas-cloud/booruq/internal/metrics"
	filterrepo "github.com/kailas-cloud/booruq/internal/repository/filter"
	"github.com/kailas-cloud/booruq/internal/repository/querycache"
	matchuc "github.com/kailas-cloud/booruq/internal/usecase/match"
)

// newEngine builds the match service and its filter repository from config.
func newEngine(cfg config.Config, logger *zap.Logger, opts ...query.Option) (*matchuc.Service, *filterrepo.Repo, error) {
	filters := make([]*domfilter.Filter, 0, len(cfg.Filters))
	for _, fc := range cfg.Filters {
		f, err := domfilter.New(domfilter.Spec{
			ID:               fc.ID,
			Name:             fc.Name,
			Description:      fc.Description,
			HiddenTagIDs:     fc.HiddenTagIDs,
			SpoileredTagIDs:  fc.SpoileredTagIDs,
			HiddenComplex:    fc.HiddenComplex,
			SpoileredComplex: fc.SpoileredComplex,
		}, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("filter %q: %w", fc.Name, err)
		}
		filters = append(filters, f)
	}

	repo, err := filterrepo.New(filters...)
	if err != nil {
		return nil, nil, fmt.Errorf("filters: %w", err)
	}

	var compiler matchuc.Compiler = matchuc.NewCompiler(opts...)
	if cfg.Cache.Size > 0 {
		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		compiler = querycache.New(compiler, cfg.Cache.Size, ttl, metrics.QueryCacheTotal, logger)
	}

	svc := matchuc.New(compiler, repo, matchuc.Limits{
		MaxImages:      cfg.Limits.MaxImages,
		MaxQueryLength: cfg.Limits.MaxQueryLength,
	}).WithQueryOptions(opts...)
	return svc, repo, nil
}
