package calendar

import "time"

// Grid dimensions.
const (
	GridRows    = 5
	GridColumns = 7
	GridSize    = GridRows * GridColumns
)

// Day describes one rendered calendar cell.
type Day struct {
	Date      time.Time
	Month     string // "Jan"
	DayNumber string // "5"
	DayName   string // "Mon"
}

// NewDay builds the descriptor for the calendar date of t.
func NewDay(t time.Time) Day {
	date := midnight(t)
	return Day{
		Date:      date,
		Month:     date.Format("Jan"),
		DayNumber: date.Format("2"),
		DayName:   date.Format("Mon"),
	}
}

// Week is one grid row, Sunday first.
type Week [GridColumns]Day

// Grid is a fixed 5x7 month view, row-major, oldest date first.
type Grid [GridRows]Week

// Week returns row n (1-based). ok is false when n is outside the grid.
func (g Grid) Week(n int) (Week, bool) {
	if n < 1 || n > GridRows {
		return Week{}, false
	}
	return g[n-1], true
}

// First returns the top-left cell.
func (g Grid) First() Day {
	return g[0][0]
}

// Last returns the bottom-right cell.
func (g Grid) Last() Day {
	return g[GridRows-1][GridColumns-1]
}

// BuildGrid returns the month view for (year, month), month being 0-based.
//
// The view starts on the Sunday on or before the first of the month and always
// holds GridSize consecutive days. Months whose week-aligned interval is six
// weeks long lose their last row; a four-week interval is padded with the days
// that follow it.
func BuildGrid(year, month int, loc *time.Location) Grid {
	start, _ := MonthInterval(year, month, loc)
	y, m, d := start.Date()

	var grid Grid
	for i := 0; i < GridSize; i++ {
		grid[i/GridColumns][i%GridColumns] = NewDay(StartOfDay(y, m, d+i, start.Location()))
	}
	return grid
}

// BuildCurrentGrid returns the month view for the clock's current month.
func BuildCurrentGrid(clock Clock, loc *time.Location) Grid {
	now := clock.Now().In(location(loc))
	return BuildGrid(now.Year(), int(now.Month())-1, loc)
}

// MonthInterval returns the first and last day of the week-aligned interval
// that covers (year, month): start-of-week of the 1st through end-of-week of
// the last day of the month.
func MonthInterval(year, month int, loc *time.Location) (start, end time.Time) {
	loc = location(loc)
	first := time.Date(year, time.Month(month+1), 1, 12, 0, 0, 0, loc)
	last := time.Date(year, time.Month(month+2), 0, 12, 0, 0, 0, loc)

	start = StartOfDay(first.Year(), first.Month(), 1-int(first.Weekday()), loc)
	end = StartOfDay(last.Year(), last.Month(), last.Day()+int(time.Saturday-last.Weekday()), loc)
	return start, end
}

// IntervalLength returns the number of days in MonthInterval, inclusive.
// It is 28, 35 or 42 under the Gregorian calendar.
func IntervalLength(year, month int, loc *time.Location) int {
	start, end := MonthInterval(year, month, loc)
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	from := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours()/24) + 1
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
