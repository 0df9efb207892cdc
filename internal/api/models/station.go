package models

// Booking is a rental booking as served to clients.
type Booking struct {
	ID                    string `json:"id"`
	PickupReturnStationID string `json:"pickupReturnStationId"`
	StartDate             string `json:"startDate"`
	EndDate               string `json:"endDate"`
	CustomerName          string `json:"customerName"`
}

// Station is an autocomplete entry.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StationList is the response of a station search.
type StationList struct {
	Items []Station `json:"items"`
	Query string    `json:"query"`
	Limit int       `json:"limit"`
}

// StationDetail is a station with its bookings keyed by calendar date
// (YYYY-MM-DD). A booking appears under its start and its end date.
type StationDetail struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	BookingsByDate map[string][]Booking `json:"bookingsByDate"`
}

// DayBookings lists the bookings that start or end on one date.
type DayBookings struct {
	StationID string    `json:"stationId"`
	Date      string    `json:"date"`
	Kind      string    `json:"kind"`
	Bookings  []Booking `json:"bookings"`
}
