package models

// Day is one calendar cell.
type Day struct {
	Date      string `json:"date"`
	Month     string `json:"month"`
	DayNumber string `json:"dayNumber"`
	DayName   string `json:"dayName"`
}

// Grid is a five-row month view. Month is 0-based.
type Grid struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Weeks [][]Day `json:"weeks"`
}

// WeekPointer is a navigation cursor: week 1-based, month 0-based.
type WeekPointer struct {
	Week  int `json:"week"`
	Month int `json:"month"`
	Year  int `json:"year"`
}
