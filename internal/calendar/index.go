package calendar

import (
	"fmt"
	"time"

	"github.com/stationcal/stationcal/internal/booking"
)

// Index groups bookings by calendar date: year -> month -> day -> bookings.
// A booking spanning several dates sits in its start bucket and its end bucket;
// a booking that starts and ends on the same date sits in one bucket.
type Index map[int]map[time.Month]map[int][]*booking.Booking

// Bucket returns the bookings filed under (year, month, day), or nil.
// It is safe to call on a nil Index.
func (idx Index) Bucket(year int, month time.Month, day int) []*booking.Booking {
	months, ok := idx[year]
	if !ok {
		return nil
	}
	days, ok := months[month]
	if !ok {
		return nil
	}
	return days[day]
}

// BucketFor returns the bucket for the calendar date of t.
func (idx Index) BucketFor(t time.Time) []*booking.Booking {
	y, m, d := t.Date()
	return idx.Bucket(y, m, d)
}

// Entries returns the total number of bucket entries. A multi-day booking
// counts twice.
func (idx Index) Entries() int {
	n := 0
	for _, months := range idx {
		for _, days := range months {
			for _, bucket := range days {
				n += len(bucket)
			}
		}
	}
	return n
}

func (idx Index) add(t time.Time, b *booking.Booking) {
	y, m, d := t.Date()

	months, ok := idx[y]
	if !ok {
		months = make(map[time.Month]map[int][]*booking.Booking)
		idx[y] = months
	}
	days, ok := months[m]
	if !ok {
		days = make(map[int][]*booking.Booking)
		months[m] = days
	}
	days[d] = append(days[d], b)
}

// GroupByDate builds an Index over bookings. Dates are read in loc.
// The input slice and the bookings are not modified; buckets hold the same
// pointers that were passed in, in input order.
func GroupByDate(bookings []*booking.Booking, loc *time.Location) (Index, error) {
	idx := make(Index)

	for _, b := range bookings {
		start, err := ParseDate(b.StartDate, loc)
		if err != nil {
			return nil, fmt.Errorf("booking %s start date: %w", b.ID, err)
		}
		end, err := ParseDate(b.EndDate, loc)
		if err != nil {
			return nil, fmt.Errorf("booking %s end date: %w", b.ID, err)
		}

		idx.add(start, b)
		if !SameDay(start, end) {
			idx.add(end, b)
		}
	}

	return idx, nil
}
