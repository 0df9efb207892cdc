package calendar

import (
	"fmt"

	"github.com/stationcal/stationcal/internal/booking"
)

// Kind selects which end of a booking a day query matches.
type Kind string

const (
	KindStart Kind = "start"
	KindEnd   Kind = "end"
)

// ParseKind validates a query kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindStart, KindEnd:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown booking kind %q", s)
	}
}

// BookingsForDay returns the bookings that start (KindStart) or end (KindEnd)
// on the calendar date of day. A nil index or an empty bucket yields an empty
// result, never an error.
func BookingsForDay(idx Index, day Day, kind Kind) []*booking.Booking {
	bucket := idx.BucketFor(day.Date)
	if len(bucket) == 0 {
		return []*booking.Booking{}
	}

	loc := day.Date.Location()
	result := make([]*booking.Booking, 0, len(bucket))
	for _, b := range bucket {
		var value string
		switch kind {
		case KindStart:
			value = b.StartDate
		case KindEnd:
			value = b.EndDate
		default:
			continue
		}

		// Bucketed bookings were parsed when the index was built.
		t, err := ParseDate(value, loc)
		if err != nil {
			continue
		}
		if SameDay(day.Date, t) {
			result = append(result, b)
		}
	}

	return result
}
