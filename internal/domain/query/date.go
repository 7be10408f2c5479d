package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// Components consumed left to right: YYYY -MM -DD [ T]HH :MM :SS.
	datePartRes = []*regexp.Regexp{
		regexp.MustCompile(`^(\d{4})`),
		regexp.MustCompile(`^-(\d{2})`),
		regexp.MustCompile(`^-(\d{2})`),
		regexp.MustCompile(`^(?:\s+|T|t)(\d{2})`),
		regexp.MustCompile(`^:(\d{2})`),
		regexp.MustCompile(`^:(\d{2})`),
	}
	tzOffsetRe     = regexp.MustCompile(`([+-])(\d{2}):(\d{2})$`)
	relativeDateRe = regexp.MustCompile(`(\d+) (second|minute|hour|day|week|month|year)s? ago`)
)

var relativeUnitSeconds = map[string]int64{
	"second": 1,
	"minute": 60,
	"hour":   3600,
	"day":    86400,
	"week":   604800,
	"month":  2592000,
	"year":   31536000,
}

// dateBound is a classified date comparison. lt and gte use bottom only.
type dateBound struct {
	compare Compare
	bottom  time.Time
	top     time.Time
}

func parseDate(value string, cmp Compare, now time.Time) (dateBound, error) {
	if b, ok := parseAbsoluteDate(value, cmp); ok {
		return b, nil
	}
	return parseRelativeDate(value, cmp, now)
}

// parseAbsoluteDate reads a possibly partial timestamp. The precision given
// sets the width of the implied interval: "2012-01" is the whole month.
func parseAbsoluteDate(value string, cmp Compare) (dateBound, bool) {
	if value == "" {
		return dateBound{}, false
	}

	offset := 0
	rest := value
	if m := tzOffsetRe.FindStringSubmatch(rest); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		offset = hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		rest = rest[:len(rest)-len(m[0])]
	} else if strings.HasSuffix(strings.ToLower(rest), "z") {
		rest = rest[:len(rest)-1]
	}

	parts := [6]int{0, 1, 1, 0, 0, 0}
	consumed := 0
	for i, re := range datePartRes {
		if rest == "" {
			break
		}
		m := re.FindStringSubmatchIndex(rest)
		if m == nil {
			return dateBound{}, false
		}
		parts[i], _ = strconv.Atoi(rest[m[2]:m[3]])
		rest = rest[m[1]:]
		consumed = i + 1
	}
	if rest != "" || consumed == 0 || !validDateParts(parts) {
		return dateBound{}, false
	}

	start := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0,
		time.FixedZone("", offset))
	end := advance(start, consumed)

	switch cmp {
	case CompareLte:
		return dateBound{compare: CompareLt, bottom: end}, true
	case CompareGte:
		return dateBound{compare: CompareGte, bottom: start}, true
	case CompareLt:
		return dateBound{compare: CompareLt, bottom: start}, true
	case CompareGt:
		return dateBound{compare: CompareGte, bottom: end}, true
	default:
		return dateBound{compare: CompareEq, bottom: start, top: end}, true
	}
}

func validDateParts(p [6]int) bool {
	if p[1] < 1 || p[1] > 12 || p[2] < 1 || p[3] > 23 || p[4] > 59 || p[5] > 59 {
		return false
	}
	// Day 0 of the following month is the last day of this one.
	last := time.Date(p[0], time.Month(p[1])+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return p[2] <= last
}

// advance moves t forward by one unit of the given precision (1 = years ... 6 = seconds).
func advance(t time.Time, precision int) time.Time {
	switch precision {
	case 1:
		return t.AddDate(1, 0, 0)
	case 2:
		return t.AddDate(0, 1, 0)
	case 3:
		return t.AddDate(0, 0, 1)
	case 4:
		return t.Add(time.Hour)
	case 5:
		return t.Add(time.Minute)
	default:
		return t.Add(time.Second)
	}
}

// parseRelativeDate reads "N units ago". gt and gte both become
// "bottom <= date", lt and lte both become "bottom > date".
func parseRelativeDate(value string, cmp Compare, now time.Time) (dateBound, error) {
	m := relativeDateRe.FindStringSubmatch(value)
	if m == nil {
		return dateBound{}, semanticError("cannot parse date string: %q", value)
	}

	scale := relativeUnitSeconds[m[2]]
	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || amount > math.MaxInt64/scale-1 {
		return dateBound{}, semanticError("date out of range: %q", value)
	}

	bottom := time.Unix(now.Unix()-amount*scale, int64(now.Nanosecond()))
	top := time.Unix(now.Unix()-(amount-1)*scale, int64(now.Nanosecond()))

	switch cmp {
	case CompareLt, CompareLte:
		return dateBound{compare: CompareLt, bottom: bottom}, nil
	case CompareGt, CompareGte:
		return dateBound{compare: CompareGte, bottom: bottom}, nil
	default:
		return dateBound{compare: CompareEq, bottom: bottom, top: top}, nil
	}
}
