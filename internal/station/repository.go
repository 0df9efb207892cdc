package station

import "context"

// Repository defines the interface for station persistence.
type Repository interface {
	// List retrieves all stations ordered by name.
	List(ctx context.Context) ([]*Station, error)

	// Get retrieves a station by ID.
	Get(ctx context.Context, id string) (*Station, error)

	// Search returns up to limit stations whose name contains query,
	// ignoring case, ordered by name.
	Search(ctx context.Context, query string, limit int) ([]*Station, error)

	// UpsertMany inserts or renames stations keyed by ID.
	UpsertMany(ctx context.Context, stations []*Station) error
}
