package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var agePattern = regexp.MustCompile(`^(-?(?:\d+)?\.?\d+)\s*([a-z]*)$`)

var ageUnits = map[string]time.Duration{
	"":             time.Millisecond,
	"ms":           time.Millisecond,
	"msec":         time.Millisecond,
	"msecs":        time.Millisecond,
	"millisecond":  time.Millisecond,
	"milliseconds": time.Millisecond,
	"s":            time.Second,
	"sec":          time.Second,
	"secs":         time.Second,
	"second":       time.Second,
	"seconds":      time.Second,
	"m":            time.Minute,
	"min":          time.Minute,
	"mins":         time.Minute,
	"minute":       time.Minute,
	"minutes":      time.Minute,
	"h":            time.Hour,
	"hr":           time.Hour,
	"hrs":          time.Hour,
	"hour":         time.Hour,
	"hours":        time.Hour,
	"d":            24 * time.Hour,
	"day":          24 * time.Hour,
	"days":         24 * time.Hour,
	"w":            7 * 24 * time.Hour,
	"week":         7 * 24 * time.Hour,
	"weeks":        7 * 24 * time.Hour,
	"y":            time.Duration(365.25 * 24 * float64(time.Hour)),
	"yr":           time.Duration(365.25 * 24 * float64(time.Hour)),
	"yrs":          time.Duration(365.25 * 24 * float64(time.Hour)),
	"year":         time.Duration(365.25 * 24 * float64(time.Hour)),
	"years":        time.Duration(365.25 * 24 * float64(time.Hour)),
}

// ParseAge parses durations written the way ACCESS_TOKEN_AGE is documented:
// a number followed by an optional unit ("1d", "12h", "90 min", "2w").
// A bare number is milliseconds.
func ParseAge(s string) (time.Duration, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("empty duration")
	}
	m := agePattern.FindStringSubmatch(v)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	unit, ok := ageUnits[m[2]]
	if !ok {
		return 0, fmt.Errorf("unknown duration unit %q", m[2])
	}
	return time.Duration(n * float64(unit)), nil
}
