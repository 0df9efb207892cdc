package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/station"
	"github.com/stationcal/stationcal/internal/worker"
)

type fakeSource struct {
	mu          sync.Mutex
	stations    []*station.Summary
	bookings    []*booking.Booking
	stationsErr error
	bookingsErr error
	calls       int
	block       chan struct{}
}

func (f *fakeSource) GetStations(ctx context.Context) ([]*station.Summary, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.stationsErr != nil {
		return nil, f.stationsErr
	}

	// Hand out fresh copies like a real fetch.
	out := make([]*station.Summary, 0, len(f.stations))
	for _, s := range f.stations {
		cpy := *s
		cpy.Bookings = append([]*booking.Booking(nil), s.Bookings...)
		out = append(out, &cpy)
	}
	return out, nil
}

func (f *fakeSource) GetBookings(_ context.Context) ([]*booking.Booking, error) {
	if f.bookingsErr != nil {
		return nil, f.bookingsErr
	}
	return f.bookings, nil
}

func testSource() *fakeSource {
	return &fakeSource{
		stations: []*station.Summary{
			{
				ID:   "st-1",
				Name: "Berlin",
				Bookings: []*booking.Booking{
					{ID: "1", PickupReturnStationID: "st-1", StartDate: "2024-03-20", EndDate: "2024-03-25", CustomerName: "John Doe"},
				},
			},
			{ID: "st-2", Name: "Munich"},
		},
		bookings: []*booking.Booking{
			{ID: "1", PickupReturnStationID: "st-1", StartDate: "2024-03-20", EndDate: "2024-03-25", CustomerName: "John Doe"},
			{ID: "2", PickupReturnStationID: "st-2", StartDate: "2024-04-01", EndDate: "2024-04-03", CustomerName: "Jane Smith"},
			{ID: "3", PickupReturnStationID: "st-unknown", StartDate: "2024-04-01", EndDate: "2024-04-03"},
		},
	}
}

func newJob(source worker.Source) (*worker.SyncJob, *station.InMemoryRepository, *booking.InMemoryRepository) {
	stations := station.NewInMemoryRepository()
	bookings := booking.NewInMemoryRepository()

	job := worker.NewSyncJob(worker.SyncJobConfig{
		Config:   worker.DefaultSyncConfig(),
		Source:   source,
		Stations: stations,
		Bookings: bookings,
		Logger:   zerolog.Nop(),
	})
	return job, stations, bookings
}

func TestDefaultSyncConfig(t *testing.T) {
	cfg := worker.DefaultSyncConfig()

	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.True(t, cfg.FetchBookingFeed)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestSyncJob_Run(t *testing.T) {
	job, stations, bookings := newJob(testSource())
	ctx := context.Background()

	result, err := job.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stations)
	assert.Equal(t, 2, result.Bookings, "feed booking merged, duplicates and orphans dropped")
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.False(t, result.EndTime.Before(result.StartTime))

	all, err := stations.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Berlin", all[0].Name)

	munich, err := bookings.ListByStation(ctx, "st-2")
	require.NoError(t, err)
	require.Len(t, munich, 1)
	assert.Equal(t, "Jane Smith", munich[0].CustomerName)

	_, err = bookings.Get(ctx, "3")
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestSyncJob_Run_WithoutFeed(t *testing.T) {
	source := testSource()
	source.bookingsErr = errors.New("must not be called")

	stations := station.NewInMemoryRepository()
	bookings := booking.NewInMemoryRepository()
	cfg := worker.DefaultSyncConfig()
	cfg.FetchBookingFeed = false

	job := worker.NewSyncJob(worker.SyncJobConfig{
		Config:   cfg,
		Source:   source,
		Stations: stations,
		Bookings: bookings,
		Logger:   zerolog.Nop(),
	})

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Bookings)
}

func TestSyncJob_Run_SkipsInvalidStation(t *testing.T) {
	source := testSource()
	source.stations[1].Bookings = []*booking.Booking{
		{ID: "bad", PickupReturnStationID: "st-2", StartDate: "next tuesday", EndDate: "2024-04-03"},
	}
	job, _, bookings := newJob(source)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "st-2", result.Errors[0].StationID)
	assert.Contains(t, result.Errors[0].Error, "invalid date")

	_, err = bookings.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)

	m := job.Metrics()
	assert.Equal(t, int64(1), m.StationsSkipped)
}

func TestSyncJob_Run_SourceFailure(t *testing.T) {
	source := testSource()
	source.stationsErr = errors.New("connection refused")
	job, _, _ := newJob(source)

	result, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching stations")
	require.NotNil(t, result)

	m := job.Metrics()
	assert.Equal(t, int64(1), m.Runs)
	assert.Equal(t, int64(1), m.FailedRuns)
	assert.Contains(t, m.LastError, "connection refused")
}

func TestSyncJob_Run_FeedFailure(t *testing.T) {
	source := testSource()
	source.bookingsErr = errors.New("timeout")
	job, _, _ := newJob(source)

	_, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching bookings")
}

func TestSyncJob_Run_RejectsOverlap(t *testing.T) {
	source := testSource()
	source.block = make(chan struct{})
	job, _, _ := newJob(source)

	done := make(chan error, 1)
	go func() {
		_, err := job.Run(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.calls == 1
	}, time.Second, 5*time.Millisecond)

	_, err := job.Run(context.Background())
	assert.ErrorIs(t, err, worker.ErrSyncInProgress)

	close(source.block)
	require.NoError(t, <-done)
}

func TestSyncJob_Run_Idempotent(t *testing.T) {
	job, _, bookings := newJob(testSource())
	ctx := context.Background()

	_, err := job.Run(ctx)
	require.NoError(t, err)
	_, err = job.Run(ctx)
	require.NoError(t, err)

	berlin, err := bookings.ListByStation(ctx, "st-1")
	require.NoError(t, err)
	assert.Len(t, berlin, 1)

	snapshot := job.MetricsSnapshot()
	assert.Equal(t, int64(2), snapshot["runs"])
	assert.Equal(t, int64(4), snapshot["bookings_synced"])
}

func TestSyncJob_HealthCheck(t *testing.T) {
	source := testSource()
	job, stations, _ := newJob(source)

	require.NoError(t, job.HealthCheck(context.Background()))

	all, err := stations.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "health check writes nothing")

	source.stationsErr = errors.New("down")
	assert.Error(t, job.HealthCheck(context.Background()))
}
