package health

import (
	"context"

	domfilter "github.com/kailas-cloud/booruq/internal/domain/filter"
)

// EngineChecker runs a self-test of the query engine.
type EngineChecker interface {
	HealthCheck(ctx context.Context) error
}

// FilterLister lists configured filters.
type FilterLister interface {
	Filters(ctx context.Context) ([]*domfilter.Filter, error)
}

// Pinger checks connectivity of the optional filter store.
type Pinger interface {
	Ping(ctx context.Context) error
}
