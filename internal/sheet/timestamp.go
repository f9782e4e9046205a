package sheet

import (
	"fmt"
	"strings"
	"time"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var monthFirstLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

var dayFirstLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
}

// TimeParser parses spreadsheet timestamps. Slash dates are tried in the
// preferred order first and the other order second, so "22/12/2025" still
// parses when month-first is preferred.
type TimeParser struct {
	DayFirst bool
	Location *time.Location
}

// Parse returns the parsed time and whether s held a valid timestamp.
func (p TimeParser) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}

	first, second := monthFirstLayouts, dayFirstLayouts
	if p.DayFirst {
		first, second = second, first
	}
	for _, group := range [][]string{isoLayouts[1:], first, second} {
		for _, layout := range group {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Column parses every cell of col. Unparsable cells become the zero time and
// are counted in a single KindParse warning; blank cells are null without a
// warning.
func (p TimeParser) Column(source string, f *Frame, col string) ([]time.Time, *Warning) {
	out := make([]time.Time, f.Len())
	failed := 0
	var example string
	for i := range f.Rows {
		v := f.Get(i, col)
		t, ok := p.Parse(v)
		if !ok && strings.TrimSpace(v) != "" {
			failed++
			if example == "" {
				example = v
			}
		}
		out[i] = t
	}
	if failed == 0 {
		return out, nil
	}
	return out, &Warning{
		Kind:    KindParse,
		Source:  source,
		Field:   col,
		Rows:    failed,
		Message: fmt.Sprintf("%d row(s) have an unreadable %s (e.g. %q)", failed, col, example),
	}
}
