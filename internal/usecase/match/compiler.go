package match

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/booruq/internal/domain/query"
	"github.com/kailas-cloud/booruq/internal/logger"
	"github.com/kailas-cloud/booruq/internal/metrics"
)

// InstrumentedCompiler compiles queries and records compile metrics.
type InstrumentedCompiler struct {
	opts []query.Option
}

// NewCompiler creates a compiler. opts apply to every compiled query.
func NewCompiler(opts ...query.Option) *InstrumentedCompiler {
	return &InstrumentedCompiler{opts: opts}
}

// Compile parses and classifies src.
func (c *InstrumentedCompiler) Compile(ctx context.Context, src string) (*query.Query, error) {
	start := time.Now()
	q, err := query.Compile(src, c.opts...)
	metrics.QueryCompileDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		status := "error"
		var pe *query.ParseError
		if errors.As(err, &pe) {
			status = pe.Kind.String()
		}
		metrics.QueryCompileTotal.WithLabelValues(status).Inc()
		logger.FromContext(ctx).Debug("Query rejected",
			zap.String("query", src),
			zap.String("kind", status),
			zap.Error(err),
		)
		return nil, err //nolint:wrapcheck // ParseError is the domain error
	}

	metrics.QueryCompileTotal.WithLabelValues("ok").Inc()
	return q, nil
}
