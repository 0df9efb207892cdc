package station

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL station repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List retrieves all stations ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*Station, error) {
	query := `
		SELECT id, name, updated_at
		FROM stations
		ORDER BY name, id
	`

	return r.queryStations(ctx, query)
}

// Get retrieves a station by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Station, error) {
	query := `
		SELECT id, name, updated_at
		FROM stations
		WHERE id = $1
	`

	var s Station
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	return &s, nil
}

// Search returns up to limit stations whose name contains query, ignoring case.
func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]*Station, error) {
	sql := `
		SELECT id, name, updated_at
		FROM stations
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY name, id
		LIMIT $2
	`

	return r.queryStations(ctx, sql, "%"+escapeLike(query)+"%", limit)
}

func (r *PostgresRepository) queryStations(ctx context.Context, query string, args ...interface{}) ([]*Station, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make([]*Station, 0)
	for rows.Next() {
		var s Station
		if err := rows.Scan(&s.ID, &s.Name, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stations = append(stations, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stations, nil
}

// UpsertMany inserts or renames stations in a single batch.
func (r *PostgresRepository) UpsertMany(ctx context.Context, stations []*Station) error {
	if len(stations) == 0 {
		return nil
	}

	query := `
		INSERT INTO stations (id, name, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, s := range stations {
		batch.Queue(query, s.ID, s.Name)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, s := range stations {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert station %s: %w", s.ID, err)
		}
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
