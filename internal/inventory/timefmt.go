package inventory

import (
	"strings"
	"time"
)

const (
	fractionLayout = "2006-01-02 15:04:05.000000"
	secondLayout   = "2006-01-02 15:04:05"
)

// FormatTime renders an InfluxDB RFC 3339 timestamp in UTC and in loc.
// Fractions are truncated to microseconds; inputs without a fraction are
// rendered to the second. Unparseable input is returned unchanged twice.
func FormatTime(raw string, loc *time.Location) (utc, local string) {
	t, hasFraction, ok := parseTime(raw)
	if !ok {
		return raw, raw
	}
	if loc == nil {
		loc = time.Local
	}
	layout := secondLayout
	if hasFraction {
		layout = fractionLayout
	}
	return t.UTC().Format(layout), t.In(loc).Format(layout)
}

func parseTime(raw string) (time.Time, bool, bool) {
	s := strings.TrimSpace(raw)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false, false
	}
	return t.Truncate(time.Microsecond), strings.Contains(s, "."), true
}

// earlier orders two raw timestamps chronologically, falling back to string
// order when either does not parse.
func earlier(a, b string) bool {
	ta, _, okA := parseTime(a)
	tb, _, okB := parseTime(b)
	if okA && okB {
		if ta.Equal(tb) {
			return a < b
		}
		return ta.Before(tb)
	}
	return a < b
}
