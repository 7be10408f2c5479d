package query

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/booruq/internal/domain"
	"github.com/kailas-cloud/booruq/internal/domain/image"
)

func testImage() *image.Image {
	uploader := "Background Pony"
	return &image.Image{
		ID:           0,
		Tags:         []string{"derpy hooves", "safe", "solo", "mane five (g5)"},
		TagCount:     4,
		Width:        800,
		Height:       700,
		AspectRatio:  800.0 / 700.0,
		CommentCount: 12,
		Score:        145,
		Upvotes:      150,
		Downvotes:    5,
		Faves:        60,
		CreatedAt:    "2012-01-02T03:12:33Z",
		Uploader:     &uploader,
		SourceURL:    "https://example.com/derpy.png",
		Description:  "Muffins!",
		SHA512Hash:   "abc123",
	}
}

func mustParse(t *testing.T, input string, opts ...Option) *Query {
	t.Helper()
	q, err := Parse(input, opts...)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return q
}

type matchCase struct {
	query string
	want  bool
}

func runMatchCases(t *testing.T, img *image.Image, snap image.Snapshot, cases []matchCase, opts ...Option) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			q := mustParse(t, tc.query, opts...)
			if got := q.Match(img, snap); got != tc.want {
				t.Errorf("Match(%q) = %v, want %v (tree %s)", tc.query, got, tc.want, q)
			}
		})
	}
}

func TestMatch_Tags(t *testing.T) {
	runMatchCases(t, testImage(), image.NoSnapshot(), []matchCase{
		{"dErPy HoOvEs", true},
		{"rainbow dash", false},
		{"derpy hooves AND safe", true},
		{"derpy hooves && safe", true},
		{"derpy hooves,safe", true},
		{"derpy hooves OR rainbow dash", true},
		{"derpy hooves || rainbow dash", true},
		{"derpy hooves AND rainbow dash", false},
		{"twilight sparkle OR rainbow dash", false},
		{"!derpy hooves", false},
		{"-safe", false},
		{"NOT rainbow dash", true},
		{"NOT(safe)", false},
		{"NOT NOT safe", true},
		{"NOT (NOT safe)", true},
		{"-(-safe)", true},
		{"NOT (NOT rainbow dash)", false},
		{"derpy hooves AND (safe OR rainbow dash)", true},
		{"twilight sparkle OR (safe AND derpy hooves)", true},
		{"(safe OR rainbow dash) AND derpy hooves", true},
		{"(safe AND derpy hooves) OR twilight sparkle", true},
		{"-(safe AND rainbow dash)", true},
		{"mane five (g5)", true},
	})
}

func TestMatch_NegationWithoutTag(t *testing.T) {
	img := testImage()
	img.Tags = []string{"derpy hooves"}

	if !mustParse(t, "-safe").Match(img, image.NoSnapshot()) {
		t.Error("expected -safe to match a record without the safe tag")
	}
}

func TestMatch_Wildcards(t *testing.T) {
	runMatchCases(t, testImage(), image.NoSnapshot(), []matchCase{
		{"derpy*", true},
		{"*hooves", true},
		{"d*s", true},
		{"derp? hooves", true},
		{"derpy hooves?", true},
		{"rainbow*", false},
		{`"derpy*"`, false},
		{`"derpy hooves"`, true},
		{`derpy\*`, false},
	})
}

func TestMatch_LiteralFields(t *testing.T) {
	runMatchCases(t, testImage(), image.NoSnapshot(), []matchCase{
		{"uploader:background pony", true},
		{"uploader:background*", true},
		{"uploader:someone else", false},
		{"description:muffins!", true},
		{"sha512_hash:ABC123", true},
		{"score:145", true},
		{"foo:bar", false},
	})
}

func TestMatch_AnonymousUploader(t *testing.T) {
	img := testImage()
	img.Uploader = nil

	for _, q := range []string{"uploader:*", "uploader:background pony"} {
		if mustParse(t, q).Match(img, image.NoSnapshot()) {
			t.Errorf("%q should not match an anonymous upload", q)
		}
	}
}

func TestMatch_Numbers(t *testing.T) {
	runMatchCases(t, testImage(), image.NoSnapshot(), []matchCase{
		{"width:800", true},
		{"width:700", false},
		{"width.gt:700", true},
		{"width.lt:900", true},
		{"width.gte:700", true},
		{"width.lte:900", true},
		{"width.gte:800", true},
		{"width.lte:800", true},
		{"width.gt:800", false},
		{"width.lt:800", false},
		{"width.gte:900", false},
		{"width.lte:700", false},
		{"width.eq:800", true},
		{"height:700", true},
		{"height:800", false},
		{"aspect_ratio.gt:1", true},
		{"aspect_ratio.lt:1", false},
		{"upvotes.gt:100", true},
		{"downvotes.gt:1", true},
		{"score.gt:1", true},
		{"faves.gt:1", true},
		{"tag_count.gt:1", true},
		{"width:abc", false},
		{"width.gt:abc", false},
	})
}

func TestMatch_NumberNaN(t *testing.T) {
	img := testImage()
	img.AspectRatio = math.NaN()

	runMatchCases(t, img, image.NoSnapshot(), []matchCase{
		{"aspect_ratio:1", false},
		{"aspect_ratio.gt:0", false},
		{"aspect_ratio.lt:9", false},
		{"aspect_ratio:1~100", false},
		{"width:800", true},
	})
}

func TestMatch_NumberWidth700(t *testing.T) {
	img := testImage()
	img.Width = 700

	if mustParse(t, "width.gt:700").Match(img, image.NoSnapshot()) {
		t.Error("width.gt:700 should not match width=700")
	}
}

func TestMatch_NumberFuzz(t *testing.T) {
	runMatchCases(t, testImage(), image.NoSnapshot(), []matchCase{
		{"width:790~10", true},
		{"width:810~10", true},
		{"width:789~10", false},
		// Fuzz ignores the comparator.
		{"width.lt:790~10", true},
	})
}

func TestMatch_Fuzzy(t *testing.T) {
	runMatchCases(t, testImage(), image.NoSnapshot(), []matchCase{
		{"derpy hovet~2.0", true},
		{"derpy hovet~1.0", false},
		{"derppyy hovet~4.0", true},
		{"derppyy hovet~3.0", false},
		{"DERPY HOVET~2", true},
		// Relative threshold: 0.2 x len("derpy hooves") = 2.4.
		{"derpy hovet~0.2", true},
		{"derpy hovet~0.1", false},
	})
}

func TestMatch_FuzzyMonotonic(t *testing.T) {
	img := testImage()
	prev := false
	for _, fuzz := range []string{"1", "2", "3", "4", "5"} {
		got := mustParse(t, "derppyy hovet~"+fuzz).Match(img, image.NoSnapshot())
		if prev && !got {
			t.Fatalf("fuzz %s rejected a match accepted by a smaller fuzz", fuzz)
		}
		prev = got
	}
	if !prev {
		t.Error("expected the largest fuzz to match")
	}
}

func TestMatch_DatesAbsolute(t *testing.T) {
	runMatchCases(t, testImage(), image.NoSnapshot(), []matchCase{
		{"created_at:2012", true},
		{"created_at:2012-01", true},
		{"created_at:2012-01-02", true},
		{"created_at:2012-01-03", false},
		{"created_at:2012-01-02 03", true},
		{"created_at:2012-01-02T03:12", true},
		{"created_at:2012-01-02T03:12:33", true},
		{"created_at:2012-01-02T03:12:34", false},
		{"created_at:2012-01-02T05:12+02:00", true},
		{"created_at:2012-01-02T03:12:33Z", true},
		{"created_at.gt:2012-01-01", true},
		{"created_at.gt:2011-12", true},
		{"created_at.gt:2011", true},
		{"created_at.gt:2012", false},
		{"created_at.gte:2012", true},
		{"created_at.lt:2012-01-03", true},
		{"created_at.lt:2012-02", true},
		{"created_at.lt:2013", true},
		{"created_at.lt:2012-01-02", false},
		{"created_at.lte:2012-01-02", true},
	})
}

func TestMatch_DateIntervalBoundaries(t *testing.T) {
	img := testImage()
	img.CreatedAt = "2012-02-01T00:00:00Z"

	runMatchCases(t, img, image.NoSnapshot(), []matchCase{
		// eq is closed-open: the first instant of February is not in January.
		{"created_at:2012-01", false},
		{"created_at:2012-02", true},
		{"created_at.lte:2012-01", false},
		{"created_at.gt:2012-01", true},
	})
}

func TestMatch_DatesRelative(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	img := testImage()
	img.CreatedAt = now.Add(-90 * time.Minute).Format(time.RFC3339)
	clock := WithClock(func() time.Time { return now })

	runMatchCases(t, img, image.NoSnapshot(), []matchCase{
		{"created_at.gt:2 hours ago", true},
		{"created_at.gt:1 day ago", true},
		{"created_at.gt:1 month ago", true},
		{"created_at.gt:1 year ago", true},
		{"created_at.lt:1 second ago", true},
		{"created_at.lt:1 minute ago", true},
		{"created_at.lt:1 hour ago", true},
		{"created_at.gt:1 hour ago", false},
		{"created_at.gt:1 minute ago", false},
		{"created_at.gt:1 second ago", false},
		{"created_at.lt:2 hours ago", false},
		{"created_at.lt:1 day ago", false},
		{"created_at.lt:1 month ago", false},
		{"created_at.lt:1 year ago", false},
		{"created_at:2 hours ago", true},
		{"created_at:1 hour ago", false},
	}, clock)
}

func TestMatch_Interactions(t *testing.T) {
	img := testImage()
	snap := image.NewSnapshot([]image.Interaction{
		{ImageID: 0, InteractionType: image.InteractionFaved, UserID: 0},
		{ImageID: 0, InteractionType: image.InteractionVoted, UserID: 0, Value: image.VoteUp},
	})

	runMatchCases(t, img, snap, []matchCase{
		{"my:faves", true},
		{"my:upvotes", true},
		{"my:downvotes", false},
		{"my:watched", false},
	})
	runMatchCases(t, img, image.NewSnapshot(nil), []matchCase{
		{"my:faves", false},
		{"my:upvotes", false},
	})
	runMatchCases(t, img, image.NoSnapshot(), []matchCase{
		{"my:faves", false},
		{"-my:faves", true},
	})
}

func TestMatch_InteractionOtherImage(t *testing.T) {
	img := testImage()
	snap := image.NewSnapshot([]image.Interaction{
		{ImageID: 42, InteractionType: image.InteractionFaved},
	})

	if mustParse(t, "my:faves").Match(img, snap) {
		t.Error("interaction on another image should not match")
	}
}

func TestMatch_Commutative(t *testing.T) {
	img := testImage()
	pairs := [][2]string{
		{"safe AND rainbow dash", "rainbow dash AND safe"},
		{"safe OR rainbow dash", "rainbow dash OR safe"},
		{"width.gt:700 AND -solo", "-solo AND width.gt:700"},
	}
	for _, p := range pairs {
		a := mustParse(t, p[0]).Match(img, image.NoSnapshot())
		b := mustParse(t, p[1]).Match(img, image.NoSnapshot())
		if a != b {
			t.Errorf("%q = %v but %q = %v", p[0], a, p[1], b)
		}
	}
}

func TestParse_Tree(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a AND -b", `And(Term("a"), Not(Term("b")))`},
		{"a OR b AND c", `Or(Term("a"), And(Term("b"), Term("c")))`},
		{"a AND b OR c", `Or(And(Term("a"), Term("b")), Term("c"))`},
		{"(a OR b) AND c", `And(Or(Term("a"), Term("b")), Term("c"))`},
		{"-(a OR b)", `Not(Or(Term("a"), Term("b")))`},
		{"  derpy hooves  ", `Term("derpy hooves")`},
		{"mane five (g5)", `Term("mane five (g5)")`},
		{"a-b", `Term("a-b")`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q := mustParse(t, tt.input)
			if got := q.String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if q.Source() != tt.input {
				t.Errorf("Source() = %q, want %q", q.Source(), tt.input)
			}
		})
	}
}

func TestParse_Modifiers(t *testing.T) {
	q := mustParse(t, "safe~0.5^2")
	term, ok := q.Root().(*Term)
	if !ok {
		t.Fatalf("expected a single term, got %s", q)
	}
	if term.Fuzz() != 0.5 {
		t.Errorf("Fuzz() = %v, want 0.5", term.Fuzz())
	}
	if term.Boost() != 2 {
		t.Errorf("Boost() = %v, want 2", term.Boost())
	}
	if term.Raw() != "safe" {
		t.Errorf("Raw() = %q, want safe", term.Raw())
	}
}

func TestParse_ModifierTextReinjected(t *testing.T) {
	q := mustParse(t, "a~1b")
	term, ok := q.Root().(*Term)
	if !ok {
		t.Fatalf("expected a single term, got %s", q)
	}
	if term.Raw() != "a~1b" || term.Fuzz() != 0 {
		t.Errorf("got raw %q fuzz %v", term.Raw(), term.Fuzz())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"a AND", "missing operand"},
		{"OR b", "missing operand"},
		{"", "missing search term"},
		{"(a", "mismatched parentheses"},
		{"a)", "mismatched parentheses"},
		{"(a)(b)", "missing operator"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Kind != Structural {
				t.Errorf("Kind = %v, want structural", pe.Kind)
			}
			if pe.Message != tt.message {
				t.Errorf("Message = %q, want %q", pe.Message, tt.message)
			}
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Error("expected error to match ErrInvalidQuery")
			}
		})
	}
}

func TestCompile_SemanticError(t *testing.T) {
	_, err := Compile("safe AND created_at:yesterday")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Kind != Semantic {
		t.Errorf("Kind = %v, want semantic", pe.Kind)
	}

	// Parse defers classification; the bad term just never matches.
	q := mustParse(t, "created_at:yesterday")
	if q.Match(testImage(), image.NoSnapshot()) {
		t.Error("unclassifiable term should not match")
	}
	term := q.Root().(*Term)
	if term.Err() == nil {
		t.Error("expected Err() after failed classification")
	}
}

func TestCompile_Valid(t *testing.T) {
	q, err := Compile("created_at.gte:2012 AND width:800")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, term := range Terms(q.Root()) {
		if term.Type() != TypeDate && term.Type() != TypeNumber {
			t.Errorf("%s classified as %v", term, term.Type())
		}
	}
}

func TestTermType(t *testing.T) {
	tests := []struct {
		input string
		want  TermType
	}{
		{"safe", TypeLiteral},
		{"uploader:x", TypeLiteral},
		{"width.gt:1", TypeNumber},
		{"created_at:2012", TypeDate},
		{"my:faves", TypeMine},
		{"nonsense.gt:1", TypeLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			term := mustParse(t, tt.input).Root().(*Term)
			if got := term.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuery_ConcurrentMatch(t *testing.T) {
	q := mustParse(t, "(derpy* OR rainbow dash) AND width.gt:700 AND created_at:2012 AND -my:faves")
	img := testImage()

	var wg sync.WaitGroup
	results := make([]bool, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = q.Match(img, image.NoSnapshot())
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if !r {
			t.Errorf("goroutine %d: expected match", i)
		}
	}
}

func TestParse_ParenthesisErrorPosition(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{"safe)", 4},
		{"(safe || (solo)", 0},
		{"a, ((b)", 3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if pe.Pos != tt.pos {
				t.Errorf("Pos = %d, want %d", pe.Pos, tt.pos)
			}
		})
	}
}
