package booruq

import (
	"time"

	"github.com/kailas-cloud/booruq/internal/domain/query"
)

// Query is a compiled query, safe for concurrent use.
type Query struct {
	q *query.Query
}

// CompileOption configures Compile.
type CompileOption func(*[]query.Option)

// At anchors relative dates such as "3 days ago" to now() instead of the wall clock.
func At(now func() time.Time) CompileOption {
	return func(opts *[]query.Option) {
		*opts = append(*opts, query.WithClock(now))
	}
}

// Compile parses src and classifies every term. Errors are *ParseError.
func Compile(src string, opts ...CompileOption) (*Query, error) {
	var qopts []query.Option
	for _, o := range opts {
		o(&qopts)
	}
	q, err := query.Compile(src, qopts...)
	if err != nil {
		return nil, err
	}
	return &Query{q: q}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string, opts ...CompileOption) *Query {
	q, err := Compile(src, opts...)
	if err != nil {
		panic("booruq: Compile(" + src + "): " + err.Error())
	}
	return q
}

// Match reports whether img satisfies the query.
func (q *Query) Match(img *Image, snap Snapshot) bool {
	return q.q.Match(img, snap)
}

// Filter returns the images that satisfy the query, in order.
func (q *Query) Filter(images []Image, snap Snapshot) []Image {
	var out []Image
	for i := range images {
		if q.q.Match(&images[i], snap) {
			out = append(out, images[i])
		}
	}
	return out
}

// Source returns the query text.
func (q *Query) Source() string { return q.q.Source() }

// String returns the expression tree, e.g. And(Term("a"), Not(Term("b"))).
func (q *Query) String() string { return q.q.String() }
