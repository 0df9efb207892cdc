// Package booking provides rental booking records and their persistence.
package booking

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrBookingNotFound = errors.New("booking not found")
)

// Booking is a single rental: a vehicle picked up and returned at one station.
// StartDate and EndDate are ISO-8601 strings exactly as the rental backend
// delivers them; EndDate is expected to be after StartDate.
type Booking struct {
	ID                    string
	PickupReturnStationID string
	StartDate             string
	EndDate               string
	CustomerName          string
	UpdatedAt             time.Time
}
