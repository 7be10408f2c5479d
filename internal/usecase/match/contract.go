package match

import (
	"context"

	domfilter "github.com/kailas-cloud/booruq/internal/domain/filter"
	"github.com/kailas-cloud/booruq/internal/domain/query"
)

// Compiler turns query text into a tree ready to match.
type Compiler interface {
	Compile(ctx context.Context, src string) (*query.Query, error)
}

// FilterRepository stores compiled filters.
type FilterRepository interface {
	Get(ctx context.Context, name string) (*domfilter.Filter, error)
	List(ctx context.Context) ([]*domfilter.Filter, error)
	Create(ctx context.Context, f *domfilter.Filter) error
	Delete(ctx context.Context, name string) error
}
