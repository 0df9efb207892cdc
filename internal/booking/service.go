package booking

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidBookingID is returned for a blank booking ID.
var ErrInvalidBookingID = errors.New("booking id is required")

// Service provides booking lookups.
type Service struct {
	repo Repository
}

// NewService creates a new booking service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves a single booking.
func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidBookingID
	}
	return s.repo.Get(ctx, id)
}

// ListByStation retrieves the bookings of one station.
func (s *Service) ListByStation(ctx context.Context, stationID string) ([]*Booking, error) {
	return s.repo.ListByStation(ctx, stationID)
}
