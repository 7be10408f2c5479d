// Package match evaluates queries and content filters over batches of images.
package match

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/booruq/internal/domain"
	domfilter "github.com/kailas-cloud/booruq/internal/domain/filter"
	"github.com/kailas-cloud/booruq/internal/domain/image"
	"github.com/kailas-cloud/booruq/internal/domain/query"
	"github.com/kailas-cloud/booruq/internal/logger"
	"github.com/kailas-cloud/booruq/internal/metrics"
)

// Limits bound a single request. Zero means unlimited.
type Limits struct {
	MaxImages      int
	MaxQueryLength int
}

// Outcome is the result of matching one image.
type Outcome struct {
	ImageID int64
	Matched bool
}

// Verdict is the result of applying a filter to one image.
type Verdict struct {
	ImageID    int64
	Visibility domfilter.Visibility
}

// Service matches queries and filters against caller-supplied images.
type Service struct {
	compiler  Compiler
	filters   FilterRepository
	limits    Limits
	queryOpts []query.Option
}

// New creates a match service. filters can be nil when no filters are configured.
func New(compiler Compiler, filters FilterRepository, limits Limits) *Service {
	return &Service{compiler: compiler, filters: filters, limits: limits}
}

// WithQueryOptions sets the options used to compile filters created at runtime.
func (s *Service) WithQueryOptions(opts ...query.Option) *Service {
	s.queryOpts = opts
	return s
}

// Match compiles src once and evaluates it against every image in order.
func (s *Service) Match(
	ctx context.Context, src string, images []image.Image, snap image.Snapshot,
) ([]Outcome, error) {
	if err := s.checkImages(images); err != nil {
		return nil, err
	}
	q, err := s.compile(ctx, src)
	if err != nil {
		return nil, err
	}

	out := make([]Outcome, len(images))
	matched := 0
	for i := range images {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		ok := q.Match(&images[i], snap)
		out[i] = Outcome{ImageID: images[i].ID, Matched: ok}
		if ok {
			matched++
		}
	}

	metrics.MatchEvaluationsTotal.WithLabelValues("match").Add(float64(matched))
	metrics.MatchEvaluationsTotal.WithLabelValues("miss").Add(float64(len(images) - matched))
	logger.FromContext(ctx).Debug("Query evaluated",
		zap.String("query", src),
		zap.Int("images", len(images)),
		zap.Int("matched", matched),
	)
	return out, nil
}

// Classify applies the named filter to every image.
func (s *Service) Classify(
	ctx context.Context, filterName string, images []image.Image, snap image.Snapshot,
) ([]Verdict, error) {
	if s.filters == nil {
		return nil, domain.ErrFilterNotFound
	}
	f, err := s.filters.Get(ctx, filterName)
	if err != nil {
		return nil, fmt.Errorf("get filter: %w", err)
	}
	return s.ClassifyWith(ctx, f, images, snap)
}

// ClassifyWith applies an already compiled filter to every image.
func (s *Service) ClassifyWith(
	ctx context.Context, f *domfilter.Filter, images []image.Image, snap image.Snapshot,
) ([]Verdict, error) {
	if err := s.checkImages(images); err != nil {
		return nil, err
	}

	out := make([]Verdict, len(images))
	for i := range images {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("classify: %w", err)
		}
		v := f.Classify(&images[i], snap)
		out[i] = Verdict{ImageID: images[i].ID, Visibility: v}
		metrics.ClassifyTotal.WithLabelValues(string(v)).Inc()
	}
	return out, nil
}

// Filters lists the configured filters.
func (s *Service) Filters(ctx context.Context) ([]*domfilter.Filter, error) {
	if s.filters == nil {
		return nil, nil
	}
	list, err := s.filters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	return list, nil
}

// CreateFilter compiles spec and stores it. The filter name comes from spec.
func (s *Service) CreateFilter(ctx context.Context, spec domfilter.Spec) (*domfilter.Filter, error) {
	if s.filters == nil {
		return nil, fmt.Errorf("%w: no filter repository configured", domain.ErrInvalidFilter)
	}
	f, err := domfilter.New(spec, s.queryOpts...)
	if err != nil {
		return nil, err
	}
	if err := s.filters.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create filter: %w", err)
	}
	logger.FromContext(ctx).Info("Filter created", zap.String("filter", f.Name()))
	return f, nil
}

// DeleteFilter removes the named filter.
func (s *Service) DeleteFilter(ctx context.Context, name string) error {
	if s.filters == nil {
		return domain.ErrFilterNotFound
	}
	if err := s.filters.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	logger.FromContext(ctx).Info("Filter deleted", zap.String("filter", name))
	return nil
}

// Validate reports whether src compiles.
func (s *Service) Validate(ctx context.Context, src string) error {
	_, err := s.compile(ctx, src)
	return err
}

// Explain returns the tree src compiles to, e.g. `And(Term("a"), Not(Term("b")))`.
func (s *Service) Explain(ctx context.Context, src string) (string, error) {
	q, err := s.compile(ctx, src)
	if err != nil {
		return "", err
	}
	return q.String(), nil
}

// HealthCheck compiles and evaluates a canary query.
func (s *Service) HealthCheck(ctx context.Context) error {
	q, err := s.compiler.Compile(ctx, canaryQuery)
	if err != nil {
		return fmt.Errorf("compile canary: %w", err)
	}
	if !q.Match(&canaryImage, image.NoSnapshot()) {
		return fmt.Errorf("canary query %q did not match", canaryQuery)
	}
	return nil
}

const canaryQuery = "safe AND width.gte:1 AND -my:faves"

var canaryImage = image.Image{ID: 1, Tags: []string{"safe"}, Width: 1}

func (s *Service) compile(ctx context.Context, src string) (*query.Query, error) {
	if s.limits.MaxQueryLength > 0 && utf8.RuneCountInString(src) > s.limits.MaxQueryLength {
		metrics.QueryCompileTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: query longer than %d characters", domain.ErrInvalidQuery, s.limits.MaxQueryLength)
	}
	q, err := s.compiler.Compile(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	return q, nil
}

func (s *Service) checkImages(images []image.Image) error {
	if s.limits.MaxImages > 0 && len(images) > s.limits.MaxImages {
		return fmt.Errorf("%w: %d images, limit is %d", domain.ErrTooManyImages, len(images), s.limits.MaxImages)
	}
	return nil
}
