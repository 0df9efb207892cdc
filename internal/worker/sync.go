package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/station"
)

// ErrSyncInProgress is returned when Run is called while another run is active.
var ErrSyncInProgress = errors.New("station sync already in progress")

// Source supplies stations and bookings. The rentals client implements it.
type Source interface {
	GetStations(ctx context.Context) ([]*station.Summary, error)
	GetBookings(ctx context.Context) ([]*booking.Booking, error)
}

// SyncJob copies stations and their bookings from a Source into the
// repositories.
type SyncJob struct {
	config   SyncConfig
	source   Source
	stations station.Repository
	bookings booking.Repository
	logger   zerolog.Logger

	running sync.Mutex
	metrics *metricsRecorder
}

// SyncJobConfig holds the dependencies of a SyncJob.
type SyncJobConfig struct {
	Config   SyncConfig
	Source   Source
	Stations station.Repository
	Bookings booking.Repository
	Logger   zerolog.Logger
}

// NewSyncJob creates a new sync job.
func NewSyncJob(cfg SyncJobConfig) *SyncJob {
	return &SyncJob{
		config:   cfg.Config.withDefaults(),
		source:   cfg.Source,
		stations: cfg.Stations,
		bookings: cfg.Bookings,
		logger:   cfg.Logger,
		metrics:  &metricsRecorder{},
	}
}

// SyncResult describes one sync run.
type SyncResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Stations  int
	Bookings  int
	Skipped   int
	Errors    []SyncError
}

// SyncError is a per-station failure. Skipped stations keep their previous
// bookings.
type SyncError struct {
	StationID string
	Error     string
}

// Run fetches every station and upserts it with its bookings. A station whose
// bookings carry malformed dates is skipped and reported in the result. The
// returned error is set only when the run could not complete at all.
func (j *SyncJob) Run(ctx context.Context) (*SyncResult, error) {
	if !j.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer j.running.Unlock()

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	result := &SyncResult{StartTime: time.Now()}
	j.logger.Info().Int("concurrency", j.config.Concurrency).Msg("starting station sync")

	err := j.run(ctx, result)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	j.metrics.update(result, err)

	if err != nil {
		j.logger.Error().Err(err).Dur("duration", result.Duration).Msg("station sync failed")
		return result, err
	}

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("stations", result.Stations).
		Int("bookings", result.Bookings).
		Int("skipped", result.Skipped).
		Msg("station sync completed")

	return result, nil
}

func (j *SyncJob) run(ctx context.Context, result *SyncResult) error {
	summaries, err := j.source.GetStations(ctx)
	if err != nil {
		return fmt.Errorf("fetching stations: %w", err)
	}

	if j.config.FetchBookingFeed {
		feed, err := j.source.GetBookings(ctx)
		if err != nil {
			return fmt.Errorf("fetching bookings: %w", err)
		}
		mergeFeed(summaries, feed)
	}

	stations := make([]*station.Station, 0, len(summaries))
	for _, s := range summaries {
		stations = append(stations, &station.Station{ID: s.ID, Name: s.Name})
	}
	if err := j.stations.UpsertMany(ctx, stations); err != nil {
		return fmt.Errorf("storing stations: %w", err)
	}
	result.Stations = len(stations)

	work := make(chan *station.Summary, len(summaries))
	outcomes := make(chan stationOutcome, len(summaries))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.syncWorker(ctx, work, outcomes)
		}()
	}

	for _, s := range summaries {
		work <- s
	}
	close(work)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		if o.err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, SyncError{StationID: o.stationID, Error: o.err.Error()})
			continue
		}
		result.Bookings += o.bookings
	}

	return ctx.Err()
}

type stationOutcome struct {
	stationID string
	bookings  int
	err       error
}

func (j *SyncJob) syncWorker(ctx context.Context, work <-chan *station.Summary, outcomes chan<- stationOutcome) {
	for s := range work {
		select {
		case <-ctx.Done():
			outcomes <- stationOutcome{stationID: s.ID, err: ctx.Err()}
		default:
			outcomes <- j.syncStation(ctx, s)
		}
	}
}

func (j *SyncJob) syncStation(ctx context.Context, s *station.Summary) stationOutcome {
	// Reject stations the calendar could not index.
	if _, err := station.Select(s, j.config.Location); err != nil {
		j.logger.Warn().Err(err).Str("station_id", s.ID).Msg("skipping station with invalid bookings")
		return stationOutcome{stationID: s.ID, err: err}
	}

	if err := j.bookings.UpsertMany(ctx, s.Bookings); err != nil {
		return stationOutcome{stationID: s.ID, err: fmt.Errorf("storing bookings: %w", err)}
	}

	return stationOutcome{stationID: s.ID, bookings: len(s.Bookings)}
}

// mergeFeed adds feed bookings to the station they reference, skipping IDs the
// station already embeds. Bookings for unknown stations are dropped.
func mergeFeed(summaries []*station.Summary, feed []*booking.Booking) {
	byID := make(map[string]*station.Summary, len(summaries))
	seen := make(map[string]map[string]bool, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
		ids := make(map[string]bool, len(s.Bookings))
		for _, b := range s.Bookings {
			ids[b.ID] = true
		}
		seen[s.ID] = ids
	}

	for _, b := range feed {
		s, ok := byID[b.PickupReturnStationID]
		if !ok || seen[s.ID][b.ID] {
			continue
		}
		s.Bookings = append(s.Bookings, b)
		seen[s.ID][b.ID] = true
	}
}

// HealthCheck verifies the source answers without writing anything.
func (j *SyncJob) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := j.source.GetStations(ctx); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

// Metrics returns a copy of the job's counters.
func (j *SyncJob) Metrics() SyncMetrics {
	return j.metrics.get()
}

// MetricsSnapshot returns the job's counters as a map.
func (j *SyncJob) MetricsSnapshot() map[string]interface{} {
	return j.metrics.get().Map()
}
