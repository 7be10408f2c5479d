package booruq

import (
	domfilter "github.com/kailas-cloud/booruq/internal/domain/filter"
	"github.com/kailas-cloud/booruq/internal/domain/image"
	"github.com/kailas-cloud/booruq/internal/domain/query"
)

// Image is a board image record.
type Image = image.Image

// Interaction is one fave or vote by the current user.
type Interaction = image.Interaction

// Snapshot is the user's interactions, or the absence of that data.
type Snapshot = image.Snapshot

// FilterSpec defines a content filter.
type FilterSpec = domfilter.Spec

// Visibility is the outcome of applying a filter to an image.
type Visibility = domfilter.Visibility

// Visibility values.
const (
	Visible   = domfilter.Visible
	Spoilered = domfilter.Spoilered
	Hidden    = domfilter.Hidden
)

// ParseError describes why a query was rejected.
type ParseError = query.ParseError

// Interaction types and vote values.
const (
	InteractionFaved = image.InteractionFaved
	InteractionVoted = image.InteractionVoted
	VoteUp           = image.VoteUp
	VoteDown         = image.VoteDown
)

// NoInteractions marks interaction data as unavailable: my:* terms never match.
func NoInteractions() Snapshot { return image.NoSnapshot() }

// Interactions wraps the user's interactions. An empty list is still data.
func Interactions(items []Interaction) Snapshot { return image.NewSnapshot(items) }

// Result is the outcome of matching one image.
type Result struct {
	ImageID int64
	Matched bool
}

// Verdict is the visibility of one image under a filter.
type Verdict struct {
	ImageID    int64
	Visibility Visibility
}

// Filter is a read-only view of a configured filter.
type Filter struct {
	Spec FilterSpec
}
