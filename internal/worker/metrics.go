package worker

import (
	"sync"
	"time"
)

// SyncMetrics accumulates statistics over sync runs.
type SyncMetrics struct {
	Runs            int64
	FailedRuns      int64
	StationsSynced  int64
	BookingsSynced  int64
	StationsSkipped int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	LastError       string
}

type metricsRecorder struct {
	mu      sync.RWMutex
	metrics SyncMetrics
}

func (r *metricsRecorder) update(result *SyncResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := &r.metrics
	m.Runs++
	m.StationsSynced += int64(result.Stations)
	m.BookingsSynced += int64(result.Bookings)
	m.StationsSkipped += int64(result.Skipped)
	m.LastRunAt = result.EndTime
	m.LastRunDuration = result.Duration
	m.LastError = ""
	if err != nil {
		m.FailedRuns++
		m.LastError = err.Error()
	}
}

func (r *metricsRecorder) get() SyncMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics
}

// Map returns the counters keyed for status output.
func (m SyncMetrics) Map() map[string]interface{} {
	return map[string]interface{}{
		"runs":              m.Runs,
		"failed_runs":       m.FailedRuns,
		"stations_synced":   m.StationsSynced,
		"bookings_synced":   m.BookingsSynced,
		"stations_skipped":  m.StationsSkipped,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"last_error":        m.LastError,
	}
}
