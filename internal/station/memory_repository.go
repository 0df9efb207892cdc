package station

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	stations map[string]*Station
}

// NewInMemoryRepository creates a new in-memory station repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		stations: make(map[string]*Station),
	}
}

// List retrieves all stations ordered by name.
func (r *InMemoryRepository) List(_ context.Context) ([]*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Station, 0, len(r.stations))
	for _, s := range r.stations {
		cpy := *s
		result = append(result, &cpy)
	}
	sortByName(result)
	return result, nil
}

// Get retrieves a station by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stations[id]
	if !ok {
		return nil, ErrStationNotFound
	}

	cpy := *s
	return &cpy, nil
}

// Search returns up to limit stations whose name contains query.
func (r *InMemoryRepository) Search(_ context.Context, query string, limit int) ([]*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	result := make([]*Station, 0)
	for _, s := range r.stations {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			cpy := *s
			result = append(result, &cpy)
		}
	}
	sortByName(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// UpsertMany inserts or renames stations keyed by ID.
func (r *InMemoryRepository) UpsertMany(_ context.Context, stations []*Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, s := range stations {
		cpy := *s
		cpy.UpdatedAt = now
		r.stations[s.ID] = &cpy
	}
	return nil
}

func sortByName(stations []*Station) {
	sort.Slice(stations, func(i, j int) bool {
		if stations[i].Name == stations[j].Name {
			return stations[i].ID < stations[j].ID
		}
		return stations[i].Name < stations[j].Name
	})
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
