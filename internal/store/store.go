// Package store holds per-session calendar state: the week cursor, the month
// grid it points into and the selected station.
package store

import (
	"sync"
	"time"

	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/calendar"
	"github.com/stationcal/stationcal/internal/station"
)

// Store is the calendar state of one session. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	clock    calendar.Clock
	loc      *time.Location
	pointer  calendar.WeekPointer
	grid     calendar.Grid
	selected *station.Detail
}

// Snapshot is a consistent copy of a Store's state and derived values.
type Snapshot struct {
	Pointer calendar.WeekPointer
	Grid    calendar.Grid
	// CurrentWeekDays is nil when the cursor's week has no grid row.
	CurrentWeekDays *calendar.Week
	HasTwoMonths    bool
	SecondaryMonth  string
	Station         *station.Detail
}

// New creates a Store positioned on the clock's current week.
func New(clock calendar.Clock, loc *time.Location) *Store {
	if clock == nil {
		clock = calendar.SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}

	s := &Store{clock: clock, loc: loc}
	s.moveTo(calendar.CurrentWeek(clock, loc))
	return s
}

// moveTo sets the cursor and rebuilds the grid for its month. Callers hold mu,
// except New.
func (s *Store) moveTo(p calendar.WeekPointer) {
	s.pointer = p
	s.grid = calendar.BuildGrid(p.Year, p.Month, s.loc)
}

// PrevWeek moves the cursor back one week.
func (s *Store) PrevWeek() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.moveTo(s.pointer.Prev())
	return s.snapshot()
}

// NextWeek moves the cursor forward one week.
func (s *Store) NextWeek() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.moveTo(s.pointer.Next())
	return s.snapshot()
}

// GoToCurrentWeek moves the cursor to the clock's current week.
func (s *Store) GoToCurrentWeek() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.moveTo(calendar.CurrentWeek(s.clock, s.loc))
	return s.snapshot()
}

// ChangeMonth shows (year, month) with month 0-based and resets the week to 1.
func (s *Store) ChangeMonth(year, month int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.moveTo(calendar.WeekPointer{Week: 1, Month: month, Year: year})
	return s.snapshot()
}

// SelectStation indexes summary and makes it the selected station. On error
// the previous selection is kept.
func (s *Store) SelectStation(summary *station.Summary) (Snapshot, error) {
	detail, err := station.Select(summary, s.loc)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = detail
	return s.snapshot(), nil
}

// BookingsForDay returns the selected station's bookings that start or end on
// day. Without a selection the result is empty.
func (s *Store) BookingsForDay(day calendar.Day, kind calendar.Kind) []*booking.Booking {
	return s.Snapshot().BookingsForDay(day, kind)
}

// StationID returns the selected station's ID, or "" without a selection.
func (snap Snapshot) StationID() string {
	if snap.Station == nil {
		return ""
	}
	return snap.Station.ID
}

// BookingsForDay queries the snapshot's station. Without a selection the
// result is empty.
func (snap Snapshot) BookingsForDay(day calendar.Day, kind calendar.Kind) []*booking.Booking {
	var idx calendar.Index
	if snap.Station != nil {
		idx = snap.Station.Bookings
	}
	return calendar.BookingsForDay(idx, day, kind)
}

// CurrentWeekDays returns the grid row for the cursor's week.
func (s *Store) CurrentWeekDays() (calendar.Week, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.grid.Week(s.pointer.Week)
}

// HasTwoMonths reports whether the visible week spans two months.
func (s *Store) HasTwoMonths() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hasTwoMonths()
}

// SecondaryMonth returns the full name of the month the visible week ends in,
// or "" when the week lies within one month.
func (s *Store) SecondaryMonth() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.secondaryMonth()
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

func (s *Store) snapshot() Snapshot {
	snap := Snapshot{
		Pointer:        s.pointer,
		Grid:           s.grid,
		HasTwoMonths:   s.hasTwoMonths(),
		SecondaryMonth: s.secondaryMonth(),
		Station:        s.selected,
	}
	if week, ok := s.grid.Week(s.pointer.Week); ok {
		snap.CurrentWeekDays = &week
	}
	return snap
}

func (s *Store) hasTwoMonths() bool {
	week, ok := s.grid.Week(s.pointer.Week)
	if !ok {
		return false
	}
	return week[0].Date.Month() != week[len(week)-1].Date.Month()
}

func (s *Store) secondaryMonth() string {
	if !s.hasTwoMonths() {
		return ""
	}
	week, _ := s.grid.Week(s.pointer.Week)
	return week[len(week)-1].Date.Format("January")
}
