package booking

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// It backs the API when no database is configured, and the tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
}

// NewInMemoryRepository creates a new in-memory booking repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		bookings: make(map[string]*Booking),
	}
}

// Get retrieves a booking by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}

	cpy := *b
	return &cpy, nil
}

// ListByStation retrieves all bookings for a station ordered by start date.
func (r *InMemoryRepository) ListByStation(_ context.Context, stationID string) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Booking, 0)
	for _, b := range r.bookings {
		if b.PickupReturnStationID == stationID {
			cpy := *b
			result = append(result, &cpy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartDate == result[j].StartDate {
			return result[i].ID < result[j].ID
		}
		return result[i].StartDate < result[j].StartDate
	})

	return result, nil
}

// UpsertMany inserts or replaces bookings keyed by ID.
func (r *InMemoryRepository) UpsertMany(_ context.Context, bookings []*Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range bookings {
		cpy := *b
		r.bookings[b.ID] = &cpy
	}
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
