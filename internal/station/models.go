// Package station provides rental stations, their bookings and the
// conversion into the date-indexed form the calendar renders.
package station

import (
	"errors"
	"fmt"
	"time"

	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/calendar"
)

// Repository errors.
var (
	ErrStationNotFound = errors.New("station not found")
)

// Station is a pickup and return location.
type Station struct {
	ID        string
	Name      string
	UpdatedAt time.Time
}

// Summary is a station with its bookings as a flat list, as fetched.
type Summary struct {
	ID       string
	Name     string
	Bookings []*booking.Booking
}

// Detail is a station with its bookings grouped by calendar date.
type Detail struct {
	ID       string
	Name     string
	Bookings calendar.Index
}

// Select converts a fetched station into its indexed form. The summary is not
// modified. A summary without bookings yields an empty index.
func Select(summary *Summary, loc *time.Location) (*Detail, error) {
	if summary == nil {
		return nil, ErrStationNotFound
	}

	idx, err := calendar.GroupByDate(summary.Bookings, loc)
	if err != nil {
		return nil, fmt.Errorf("index station %s: %w", summary.ID, err)
	}

	return &Detail{
		ID:       summary.ID,
		Name:     summary.Name,
		Bookings: idx,
	}, nil
}
