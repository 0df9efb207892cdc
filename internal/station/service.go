package station

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/calendar"
)

// Search limits.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// Service provides station lookups for the calendar.
type Service struct {
	stations Repository
	bookings booking.Repository
	loc      *time.Location
}

// NewService creates a new station service. Booking dates are indexed in loc.
func NewService(stations Repository, bookings booking.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		stations: stations,
		bookings: bookings,
		loc:      loc,
	}
}

// Location returns the calendar location.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Search returns stations whose name contains query. An empty query matches
// every station. limit is clamped to 1..MaxSearchLimit, defaulting to
// DefaultSearchLimit.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Station, error) {
	return s.stations.Search(ctx, strings.TrimSpace(query), normalizeLimit(limit))
}

// Get returns a station with its bookings as a flat list.
func (s *Service) Get(ctx context.Context, id string) (*Summary, error) {
	st, err := s.stations.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListByStation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list bookings for station %s: %w", id, err)
	}

	return &Summary{
		ID:       st.ID,
		Name:     st.Name,
		Bookings: bookings,
	}, nil
}

// Detail returns a station with its bookings grouped by date.
func (s *Service) Detail(ctx context.Context, id string) (*Detail, error) {
	summary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Select(summary, s.loc)
}

// BookingsForDay returns the bookings of a station that start or end on date.
func (s *Service) BookingsForDay(ctx context.Context, id string, date time.Time, kind calendar.Kind) ([]*booking.Booking, error) {
	detail, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	return calendar.BookingsForDay(detail.Bookings, calendar.NewDay(date.In(s.loc)), kind), nil
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return limit
	}
}
