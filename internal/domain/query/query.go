// Package query parses and evaluates image board search queries against
// records held in memory. A query is parsed once and matched many times.
package query

import (
	"errors"
	"time"

	"github.com/kailas-cloud/booruq/internal/domain/image"
)

// Option configures parsing.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock sets the source of "now" for relative dates such as "3 days ago".
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// Query is a parsed query tree.
type Query struct {
	source string
	root   Operand
}

// Parse builds the tree for input. Terms are classified lazily on first match.
func Parse(input string, opts ...Option) (*Query, error) {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	steps, err := buildSteps(tokens)
	if err != nil {
		return nil, err
	}
	root, err := assemble(steps)
	if err != nil {
		return nil, err
	}

	for _, t := range Terms(root) {
		t.clock = o.clock
	}
	return &Query{source: input, root: root}, nil
}

// Compile is Parse followed by classification of every term, so malformed
// dates are reported here instead of silently never matching.
func Compile(input string, opts ...Option) (*Query, error) {
	q, err := Parse(input, opts...)
	if err != nil {
		return nil, err
	}
	for _, t := range Terms(q.root) {
		if err := t.Err(); err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return nil, pe
			}
			return nil, semanticError("%v", err)
		}
	}
	return q, nil
}

// Match reports whether the record satisfies the query.
func (q *Query) Match(img *image.Image, snap image.Snapshot) bool {
	return q.root.Match(img, snap)
}

// Root returns the top node of the tree.
func (q *Query) Root() Operand { return q.root }

// Source returns the text the query was parsed from.
func (q *Query) Source() string { return q.source }

func (q *Query) String() string { return q.root.String() }
