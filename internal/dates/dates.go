// Package dates parses the date strings club sheets contain and classifies
// them as past or upcoming. ISO and UK day-first forms are extracted
// manually so "03/04/2024" is never read month-first; anything else falls
// through a list of known layouts.
package dates

import (
	"regexp"
	"strings"
	"time"
)

var (
	isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	ukDate  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// fallbackLayouts covers formats occasionally pasted into sheets. All are
// four-digit-year; two-digit years are too ambiguous to guess.
var fallbackLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2, 2006",
	"20060102",
}

// Parse extracts a calendar date from a cell value. Any time-of-day
// component (after "T" or whitespace) is stripped, and the result is
// anchored to midnight UTC for same-day comparison. Returns false when
// nothing parses.
func Parse(text string) (time.Time, bool) {
	datePart := strings.TrimSpace(text)
	if i := strings.IndexAny(datePart, "T \t"); i >= 0 {
		datePart = datePart[:i]
	}
	if datePart == "" {
		return time.Time{}, false
	}

	if m := isoDate.FindStringSubmatch(datePart); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := ukDate.FindStringSubmatch(datePart); m != nil {
		// Day first.
		return makeDate(m[3], m[2], m[1])
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, datePart); err == nil {
			return midnight(t), true
		}
	}
	return time.Time{}, false
}

// IsPast reports whether the date is strictly earlier than now's calendar
// day. An unparsed date is never past.
func IsPast(t time.Time, ok bool, now time.Time) bool {
	if !ok {
		return false
	}
	return t.Before(midnight(now))
}

// makeDate builds a date from numeric fields and rejects out-of-range
// values: time.Date would silently normalize 2024-13-40, which for sheet
// data means a typo, not a date.
func makeDate(year, month, day string) (time.Time, bool) {
	y, mo, d := atoi(year), atoi(month), atoi(day)
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != time.Month(mo) {
		return time.Time{}, false
	}
	return t, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
