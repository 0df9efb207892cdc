package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Subsystems []SubsystemStatus `json:"subsystems"`
	Providers  []ProviderStatus  `json:"providers"`
	Sync       *SyncMetrics      `json:"sync,omitempty"`
}

// SubsystemStatus represents the status of a subsystem.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus represents the status of an upstream provider.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuitState"`
	ConsecutiveFailures uint32       `json:"consecutiveFailures"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *Timestamp   `json:"lastFailureAt,omitempty"`
	Message             *string      `json:"message,omitempty"`
}

// SyncMetrics summarizes the station sync job.
type SyncMetrics struct {
	Runs            int64      `json:"runs"`
	FailedRuns      int64      `json:"failedRuns"`
	StationsSynced  int64      `json:"stationsSynced"`
	BookingsSynced  int64      `json:"bookingsSynced"`
	StationsSkipped int64      `json:"stationsSkipped"`
	LastRunAt       *Timestamp `json:"lastRunAt,omitempty"`
	LastDurationMs  int64      `json:"lastDurationMs"`
	LastError       string     `json:"lastError,omitempty"`
}

// SyncResult is the outcome of a sync run triggered through the admin API.
type SyncResult struct {
	StartTime  Timestamp   `json:"startTime"`
	EndTime    Timestamp   `json:"endTime"`
	DurationMs int64       `json:"durationMs"`
	Stations   int         `json:"stations"`
	Bookings   int         `json:"bookings"`
	Skipped    int         `json:"skipped"`
	Errors     []SyncError `json:"errors,omitempty"`
}

// SyncError describes a station that could not be synced.
type SyncError struct {
	StationID string `json:"stationId"`
	Error     string `json:"error"`
}
