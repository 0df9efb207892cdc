// Package calendar provides the date arithmetic behind the booking calendar:
// the month grid, the per-day booking index, week navigation and day queries.
//
// Everything in this package is pure. Time flows in through a Clock and a
// *time.Location so results are deterministic in tests.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned when a booking date cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Clock is a source of the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

const dateLayout = "2006-01-02"

// localLayouts are tried after RFC3339 and interpreted in the calendar location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseDate parses an ISO-8601 booking date.
// Values carrying an offset are converted into loc; values without one are
// read as wall-clock time in loc. A nil loc means UTC.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc), nil
	}

	if t, err := time.Parse(dateLayout, value); err == nil {
		y, m, d := t.Date()
		return StartOfDay(y, m, d, loc), nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// SameDay reports whether a and b fall on the same calendar date,
// evaluated in a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns the earliest instant of the civil date (y, m, d) in loc.
// Out-of-range days are normalized the way time.Date does. Where a DST
// transition skips midnight the day starts at the end of the gap.
func StartOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	loc = location(loc)
	y, m, d = civilDate(y, m, d, loc)

	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if ty, tm, td := t.Date(); ty != y || tm != m || td != d {
		_, end := t.ZoneBounds()
		if !end.IsZero() {
			t = end
		}
	}
	return t
}

// civilDate normalizes (y, m, d) using noon, which no transition skips.
func civilDate(y int, m time.Month, d int, loc *time.Location) (int, time.Month, int) {
	return time.Date(y, m, d, 12, 0, 0, 0, loc).Date()
}

// midnight truncates t to the start of its calendar day.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return StartOfDay(y, m, d, t.Location())
}
