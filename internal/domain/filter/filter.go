// Package filter decides whether an image is hidden, spoilered or shown
// under a user's content filter.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/booruq/internal/domain"
	"github.com/kailas-cloud/booruq/internal/domain/image"
	"github.com/kailas-cloud/booruq/internal/domain/query"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Visibility is the outcome of applying a filter to an image.
type Visibility string

const (
	// Visible images are shown normally.
	Visible Visibility = "visible"
	// Spoilered images are shown behind a spoiler.
	Spoilered Visibility = "spoilered"
	// Hidden images are not shown at all.
	Hidden Visibility = "hidden"
)

// Spec is the stored form of a filter.
type Spec struct {
	ID               int64
	Name             string
	Description      string
	HiddenTagIDs     []int64
	SpoileredTagIDs  []int64
	HiddenComplex    string
	SpoileredComplex string
}

// Filter is a compiled filter (immutable, safe for concurrent use).
type Filter struct {
	spec      Spec
	hidden    *query.Query
	spoilered *query.Query
}

// New validates the spec and compiles its complex queries.
// An empty complex query never matches.
func New(spec Spec, opts ...query.Option) (*Filter, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidFilter)
	}
	if len(spec.Name) > 64 || !nameRegex.MatchString(spec.Name) {
		return nil, fmt.Errorf("%w: name must be 1-64 alphanumeric, underscore or hyphen characters", domain.ErrInvalidFilter)
	}

	hidden, err := compileComplex(spec.HiddenComplex, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: hidden_complex: %w", domain.ErrInvalidFilter, err)
	}
	spoilered, err := compileComplex(spec.SpoileredComplex, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: spoilered_complex: %w", domain.ErrInvalidFilter, err)
	}

	return &Filter{spec: spec, hidden: hidden, spoilered: spoilered}, nil
}

func compileComplex(src string, opts []query.Option) (*query.Query, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	return query.Compile(src, opts...)
}

// ID returns the filter id.
func (f *Filter) ID() int64 { return f.spec.ID }

// Name returns the filter name.
func (f *Filter) Name() string { return f.spec.Name }

// Description returns the filter description.
func (f *Filter) Description() string { return f.spec.Description }

// Spec returns a copy of the stored form.
func (f *Filter) Spec() Spec {
	s := f.spec
	s.HiddenTagIDs = append([]int64(nil), f.spec.HiddenTagIDs...)
	s.SpoileredTagIDs = append([]int64(nil), f.spec.SpoileredTagIDs...)
	return s
}

// Classify applies the filter. Hidden wins over spoilered.
func (f *Filter) Classify(img *image.Image, snap image.Snapshot) Visibility {
	if img.HasTagID(f.spec.HiddenTagIDs) || matches(f.hidden, img, snap) {
		return Hidden
	}
	if img.HasTagID(f.spec.SpoileredTagIDs) || matches(f.spoilered, img, snap) {
		return Spoilered
	}
	return Visible
}

func matches(q *query.Query, img *image.Image, snap image.Snapshot) bool {
	return q != nil && q.Match(img, snap)
}
