package models

// Session is the calendar state of one client session.
type Session struct {
	ID        string      `json:"id"`
	CreatedAt Timestamp   `json:"createdAt"`
	ExpiresAt Timestamp   `json:"expiresAt"`
	Pointer   WeekPointer `json:"pointer"`
	Grid      Grid        `json:"grid"`

	// CurrentWeekDays is omitted when the cursor's week has no grid row.
	CurrentWeekDays []Day          `json:"currentWeekDays,omitempty"`
	HasTwoMonths    bool           `json:"hasTwoMonths"`
	SecondaryMonth  string         `json:"secondaryMonth,omitempty"`
	Station         *StationDetail `json:"station,omitempty"`
}

// ChangeMonthRequest is the body of PUT /v1/sessions/{sessionId}/month.
type ChangeMonthRequest struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
}

// SelectStationRequest is the body of PUT /v1/sessions/{sessionId}/station.
type SelectStationRequest struct {
	StationID string `json:"stationId"`
}
