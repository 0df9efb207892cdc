package booking

import "context"

// Repository defines the interface for booking persistence.
type Repository interface {
	// Get retrieves a booking by ID.
	Get(ctx context.Context, id string) (*Booking, error)

	// ListByStation retrieves all bookings picked up and returned at a station,
	// ordered by start date.
	ListByStation(ctx context.Context, stationID string) ([]*Booking, error)

	// UpsertMany inserts or replaces bookings keyed by ID.
	UpsertMany(ctx context.Context, bookings []*Booking) error
}
