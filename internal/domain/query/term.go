package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/booruq/internal/domain/image"
)

// TermType is how a classified term compares against a record.
type TermType uint8

const (
	// TypeLiteral terms compare strings.
	TypeLiteral TermType = iota + 1
	// TypeNumber terms compare numeric fields.
	TypeNumber
	// TypeDate terms compare date fields.
	TypeDate
	// TypeMine terms test the caller's interactions.
	TypeMine
)

func (t TermType) String() string {
	switch t {
	case TypeLiteral:
		return "literal"
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date"
	case TypeMine:
		return "mine"
	default:
		return "unknown"
	}
}

// Compare is the comparator of a range term.
type Compare uint8

// Comparators.
const (
	CompareEq Compare = iota
	CompareLt
	CompareLte
	CompareGt
	CompareGte
)

var compareNames = map[string]Compare{
	"eq":  CompareEq,
	"lt":  CompareLt,
	"lte": CompareLte,
	"gt":  CompareGt,
	"gte": CompareGte,
}

func (c Compare) String() string {
	for name, v := range compareNames {
		if v == c {
			return name
		}
	}
	return "unknown"
}

var (
	rangeFieldRe  = regexp.MustCompile(`^(\w+)\.([lg]te?|eq)$`)
	fullyQuotedRe = regexp.MustCompile(`^"(?:\\"|[^"])+"$`)
	// Everything but a wildcard may be escaped in a wildcard term.
	escapedRe         = regexp.MustCompile(`\\([^*?])`)
	escapedWildcardRe = regexp.MustCompile(`\\([*?])`)
)

// Term is a leaf condition. It is classified on first match and the result
// is kept for every later match, so a Term may be shared between goroutines.
type Term struct {
	raw   string
	fuzz  float64
	boost float64
	clock func() time.Time

	once sync.Once
	c    classification
	err  error
}

// classification is the parsed form of a term.
type classification struct {
	kind     TermType
	field    image.Field
	mine     string
	compare  Compare
	wildcard bool

	text    string
	pattern *regexp.Regexp

	number   float64
	numberOK bool

	// bottom alone bounds lt/gte; eq uses [bottom, top).
	bottom time.Time
	top    time.Time
}

func newTerm(text string) *Term {
	return &Term{raw: strings.TrimSpace(text)}
}

func (t *Term) append(text string) {
	t.raw += text
}

// Raw returns the accumulated term text.
func (t *Term) Raw() string { return t.raw }

// Fuzz returns the fuzz modifier; zero means none.
func (t *Term) Fuzz() float64 { return t.fuzz }

// Boost returns the boost modifier. It has no effect on matching.
func (t *Term) Boost() float64 { return t.boost }

// Type classifies the term if needed and returns its type.
func (t *Term) Type() TermType {
	c, _ := t.classified()
	return c.kind
}

// Err classifies the term if needed and returns the classification error.
func (t *Term) Err() error {
	_, err := t.classified()
	return err
}

func (t *Term) String() string {
	return fmt.Sprintf("Term(%q)", t.raw)
}

func (t *Term) operand() {}

func (t *Term) classified() (classification, error) {
	t.once.Do(func() {
		now := time.Now
		if t.clock != nil {
			now = t.clock
		}
		t.c, t.err = classify(t.raw, t.fuzz, now())
	})
	return t.c, t.err
}

func classify(raw string, fuzz float64, now time.Time) (classification, error) {
	text := strings.TrimSpace(raw)
	c := classification{kind: TypeLiteral, field: image.FieldTags}

	c.wildcard = fuzz == 0 && !fullyQuotedRe.MatchString(text)
	if c.wildcard {
		text = escapedRe.ReplaceAllString(text, "$1")
	} else {
		if fuzz == 0 {
			text = strings.ReplaceAll(text[1:len(text)-1], `\"`, `"`)
		}
		text = escapedWildcardRe.ReplaceAllString(text, "$1")
	}

	if name, value, found := strings.Cut(text, ":"); found {
		if field, kind, cmp, ok := parseRangeField(name); ok {
			c.kind, c.field, c.compare, c.wildcard = kind, field, cmp, false
			if kind == TypeDate {
				b, err := parseDate(value, cmp, now)
				if err != nil {
					return classification{}, err
				}
				c.compare, c.bottom, c.top = b.compare, b.bottom, b.top
			} else {
				n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
				c.number, c.numberOK = n, err == nil
			}
			return c, nil
		}

		if field, ok := image.LiteralField(name); ok {
			c.field = field
			text = value
		} else if name == "my" {
			c.kind = TypeMine
			c.mine = value
			return c, nil
		}
	}

	if c.wildcard {
		c.pattern = compileWildcard(text)
	} else {
		c.text = text
	}
	return c, nil
}

func parseRangeField(name string) (image.Field, TermType, Compare, bool) {
	if f, ok := image.NumberField(name); ok {
		return f, TypeNumber, CompareEq, true
	}
	if f, ok := image.DateField(name); ok {
		return f, TypeDate, CompareEq, true
	}

	m := rangeFieldRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, 0, false
	}
	cmp := compareNames[m[2]]
	if f, ok := image.NumberField(m[1]); ok {
		return f, TypeNumber, cmp, true
	}
	if f, ok := image.DateField(m[1]); ok {
		return f, TypeDate, cmp, true
	}
	return 0, 0, 0, false
}

// compileWildcard turns * and ? into regex wildcards. Backslash keeps a
// following wildcard literal. The result is anchored and case-insensitive.
func compileWildcard(text string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?i)^")
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes) && (runes[i+1] == '*' || runes[i+1] == '?'):
			i++
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case r == '*':
			b.WriteString(".*")
		case r == '?':
			b.WriteString(".?")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
