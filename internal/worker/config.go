// Package worker provides the background jobs that keep the station and
// booking store in sync with the rental backend.
package worker

import "time"

// Job types accepted on the Pub/Sub subscription.
const (
	JobStationSync = "station_sync"
	JobHealthCheck = "health_check"
)

// SyncConfig holds configuration for the station sync job.
type SyncConfig struct {
	// Concurrency is the number of stations written in parallel. Default: 4.
	Concurrency int

	// Timeout bounds one whole sync run. Default: 2 minutes.
	Timeout time.Duration

	// FetchBookingFeed also pulls the flat booking feed and merges it into the
	// bookings embedded in each station. Default: true.
	FetchBookingFeed bool

	// Location is the calendar location used to validate booking dates.
	Location *time.Location
}

// DefaultSyncConfig returns the default sync configuration.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Concurrency:      4,
		Timeout:          2 * time.Minute,
		FetchBookingFeed: true,
		Location:         time.UTC,
	}
}

func (c SyncConfig) withDefaults() SyncConfig {
	def := DefaultSyncConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Location == nil {
		c.Location = def.Location
	}
	return c
}
