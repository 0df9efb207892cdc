package calendar

import "time"

// Navigation model: every month is paged as exactly four weeks.
const (
	WeeksInMonth = 4
	MonthsInYear = 12
)

// WeekPointer is a navigation cursor. Week is 1-based, Month is 0-based
// (January = 0).
type WeekPointer struct {
	Week  int
	Month int
	Year  int
}

// NextWeek advances one week, rolling over into the next month after week 4
// and into the next year after December. Inputs are not validated.
func NextWeek(week, month, year int) WeekPointer {
	next := WeekPointer{Week: week + 1, Month: month, Year: year}

	if next.Week > WeeksInMonth {
		next.Week = 1
		next.Month++
		if next.Month >= MonthsInYear {
			next.Month = 0
			next.Year++
		}
	}

	return next
}

// PrevWeek steps back one week, rolling over into week 4 of the previous
// month before week 1 and into December of the previous year before January.
// Inputs are not validated.
func PrevWeek(week, month, year int) WeekPointer {
	prev := WeekPointer{Week: week - 1, Month: month, Year: year}

	if prev.Week < 1 {
		prev.Week = WeeksInMonth
		prev.Month--
		if prev.Month < 0 {
			prev.Month = MonthsInYear - 1
			prev.Year--
		}
	}

	return prev
}

// Next returns NextWeek of p.
func (p WeekPointer) Next() WeekPointer {
	return NextWeek(p.Week, p.Month, p.Year)
}

// Prev returns PrevWeek of p.
func (p WeekPointer) Prev() WeekPointer {
	return PrevWeek(p.Week, p.Month, p.Year)
}

// WeekOfMonth returns the Sunday-start week of the month t falls in, from 1
// up to 6. Days before the first Sunday belong to week 1.
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 12, 0, 0, 0, t.Location())
	offset := int(first.Weekday())
	return (t.Day()+offset-1)/7 + 1
}

// CurrentWeek returns the pointer for the clock's current date in loc.
// Week may be 5 or 6 near the end of long months.
func CurrentWeek(clock Clock, loc *time.Location) WeekPointer {
	now := clock.Now().In(location(loc))
	return WeekPointer{
		Week:  WeekOfMonth(now),
		Month: int(now.Month()) - 1,
		Year:  now.Year(),
	}
}
