package extract

import (
	"strings"
	"time"
)

// dateLayouts is the ordered format cascade; the first layout that parses
// wins. Two-digit-year layouts are windowed afterward.
var dateLayouts = []struct {
	layout   string
	twoDigit bool
}{
	{"01/02/2006", false},
	{"01-02-2006", false},
	{"01/02/06", true},
	{"01-02-06", true},
	{"2006/01/02", false},
	{"2006-01-02", false},
	{"January 2, 2006", false},
	{"Jan 2, 2006", false},
	{"2 January 2006", false},
}

// parseDate tries the format cascade against a candidate date string.
// Two-digit years are resolved uniformly: if the parsed year is below 100,
// 2000 is added, so "12/25/49" and "12/25/99" both land in the 2000s.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, dl := range dateLayouts {
		t, err := time.Parse(dl.layout, raw)
		if err != nil {
			continue
		}
		if dl.twoDigit && t.Year() < 2000 {
			// Go's two-digit parsing puts 69-99 in the 1900s; the windowing
			// rule here is always 2000+YY.
			t = t.AddDate(100, 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}

// calendarDate truncates a time to its calendar date in UTC.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
