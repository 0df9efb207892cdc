package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL booking repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a booking by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Booking, error) {
	query := `
		SELECT id, station_id, start_date, end_date, customer_name, updated_at
		FROM bookings
		WHERE id = $1
	`

	var b Booking
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.PickupReturnStationID,
		&b.StartDate,
		&b.EndDate,
		&b.CustomerName,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

// ListByStation retrieves all bookings for a station ordered by start date.
func (r *PostgresRepository) ListByStation(ctx context.Context, stationID string) ([]*Booking, error) {
	query := `
		SELECT id, station_id, start_date, end_date, customer_name, updated_at
		FROM bookings
		WHERE station_id = $1
		ORDER BY start_date, id
	`

	rows, err := r.pool.Query(ctx, query, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*Booking, 0)
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID,
			&b.PickupReturnStationID,
			&b.StartDate,
			&b.EndDate,
			&b.CustomerName,
			&b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// UpsertMany inserts or replaces bookings in a single batch.
func (r *PostgresRepository) UpsertMany(ctx context.Context, bookings []*Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	query := `
		INSERT INTO bookings (id, station_id, start_date, end_date, customer_name, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			station_id = EXCLUDED.station_id,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			customer_name = EXCLUDED.customer_name,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, b := range bookings {
		batch.Queue(query, b.ID, b.PickupReturnStationID, b.StartDate, b.EndDate, b.CustomerName)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, b := range bookings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert booking %s: %w", b.ID, err)
		}
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
