package query

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/kailas-cloud/booruq/internal/domain/image"
)

// Mine predicates that can be answered from an interaction snapshot.
const (
	mineFaves     = "faves"
	mineUpvotes   = "upvotes"
	mineDownvotes = "downvotes"
)

// Match reports whether the record satisfies the term. A term that failed
// to classify never matches.
func (t *Term) Match(img *image.Image, snap image.Snapshot) bool {
	c, err := t.classified()
	if err != nil {
		return false
	}

	switch c.kind {
	case TypeLiteral:
		return t.matchLiteral(&c, img)
	case TypeMine:
		return matchMine(c.mine, img.ID, snap)
	case TypeDate:
		return matchDate(&c, img)
	case TypeNumber:
		return matchNumber(&c, t.fuzz, img)
	default:
		return false
	}
}

func (t *Term) matchLiteral(c *classification, img *image.Image) bool {
	var cmp func(string) bool
	switch {
	case t.fuzz != 0:
		cmp = func(s string) bool { return fuzzyMatch(c.text, s, t.fuzz) }
	case c.wildcard:
		cmp = c.pattern.MatchString
	default:
		cmp = func(s string) bool { return exactMatch(c.text, s) }
	}

	if c.field == image.FieldTags {
		for _, tag := range img.Tags {
			if cmp(tag) {
				return true
			}
		}
		return false
	}

	v, ok := img.Literal(c.field)
	if !ok {
		return false
	}
	return cmp(v)
}

func exactMatch(term, target string) bool {
	return strings.ToLower(term) == strings.ToLower(target)
}

// fuzzyMatch compares by edit distance. A fuzz of 1 or more is an absolute
// distance; below 1 it is a fraction of the target length.
func fuzzyMatch(term, target string, fuzz float64) bool {
	threshold := fuzz
	if fuzz < 1.0 {
		threshold = fuzz * float64(utf8.RuneCountInString(target))
	}
	distance := levenshtein.ComputeDistance(strings.ToLower(term), strings.ToLower(target))
	return float64(distance) <= threshold
}

// matchMine fails closed when no snapshot was supplied.
func matchMine(predicate string, imageID int64, snap image.Snapshot) bool {
	if !snap.Present() {
		return false
	}
	switch predicate {
	case mineFaves:
		return snap.Has(imageID, image.InteractionFaved)
	case mineUpvotes:
		return snap.HasValue(imageID, image.InteractionVoted, image.VoteUp)
	case mineDownvotes:
		return snap.HasValue(imageID, image.InteractionVoted, image.VoteDown)
	default:
		return false
	}
}

// matchDate treats intervals as closed-open: eq is bottom <= d < top.
func matchDate(c *classification, img *image.Image) bool {
	d, ok := img.Date(c.field)
	if !ok {
		return false
	}
	switch c.compare {
	case CompareLt:
		return c.bottom.After(d)
	case CompareGte:
		return !c.bottom.After(d)
	default:
		return !d.Before(c.bottom) && c.top.After(d)
	}
}

// matchNumber applies fuzz as a symmetric window regardless of comparator.
func matchNumber(c *classification, fuzz float64, img *image.Image) bool {
	if !c.numberOK {
		return false
	}
	v, ok := img.Number(c.field)
	if !ok || math.IsNaN(v) {
		return false
	}
	term := c.number
	if fuzz != 0 {
		return term <= v+fuzz && term+fuzz >= v
	}
	switch c.compare {
	case CompareLt:
		return v < term
	case CompareGt:
		return v > term
	case CompareLte:
		return v <= term
	case CompareGte:
		return v >= term
	default:
		return v == term
	}
}
