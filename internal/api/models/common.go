// Package models provides the request and response bodies of the station
// calendar API.
package models

import (
	"encoding/json"
	"time"
)

// HealthStatus is the coarse state reported by the ops endpoints.
type HealthStatus string

// Ops statuses, ordered from best to worst.
const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// DateLayout is the wire format of calendar dates. Dates carry no zone; they
// are read in the configured calendar location.
const DateLayout = "2006-01-02"

// Timestamp is an instant on the wire, always RFC3339 in UTC.
type Timestamp time.Time

// MarshalJSON writes the instant as an RFC3339 string in UTC.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts an RFC3339 string or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
