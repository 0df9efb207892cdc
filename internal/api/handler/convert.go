package handler

import (
	"fmt"
	"sort"
	"time"

	"github.com/stationcal/stationcal/internal/api/models"
	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/calendar"
	"github.com/stationcal/stationcal/internal/station"
	"github.com/stationcal/stationcal/internal/store"
	"github.com/stationcal/stationcal/internal/worker"
)

func toDay(d calendar.Day) models.Day {
	return models.Day{
		Date:      d.Date.Format(models.DateLayout),
		Month:     d.Month,
		DayNumber: d.DayNumber,
		DayName:   d.DayName,
	}
}

func toWeek(w calendar.Week) []models.Day {
	days := make([]models.Day, len(w))
	for i, d := range w {
		days[i] = toDay(d)
	}
	return days
}

func toGrid(year, month int, g calendar.Grid) models.Grid {
	weeks := make([][]models.Day, len(g))
	for i, w := range g {
		weeks[i] = toWeek(w)
	}
	return models.Grid{Year: year, Month: month, Weeks: weeks}
}

func toWeekPointer(p calendar.WeekPointer) models.WeekPointer {
	return models.WeekPointer{Week: p.Week, Month: p.Month, Year: p.Year}
}

func toBooking(b *booking.Booking) models.Booking {
	return models.Booking{
		ID:                    b.ID,
		PickupReturnStationID: b.PickupReturnStationID,
		StartDate:             b.StartDate,
		EndDate:               b.EndDate,
		CustomerName:          b.CustomerName,
	}
}

func toBookings(bookings []*booking.Booking) []models.Booking {
	out := make([]models.Booking, len(bookings))
	for i, b := range bookings {
		out[i] = toBooking(b)
	}
	return out
}

func toStations(stations []*station.Station) []models.Station {
	out := make([]models.Station, len(stations))
	for i, s := range stations {
		out[i] = models.Station{ID: s.ID, Name: s.Name}
	}
	return out
}

func toStationDetail(d *station.Detail) *models.StationDetail {
	if d == nil {
		return nil
	}

	byDate := make(map[string][]models.Booking, d.Bookings.Entries())
	for year, months := range d.Bookings {
		for month, days := range months {
			for day, bucket := range days {
				key := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
				byDate[key] = toBookings(bucket)
			}
		}
	}

	return &models.StationDetail{
		ID:             d.ID,
		Name:           d.Name,
		BookingsByDate: byDate,
	}
}

func toSession(sess *store.Session, snap store.Snapshot, ttl time.Duration) models.Session {
	out := models.Session{
		ID:             sess.ID,
		CreatedAt:      models.Timestamp(sess.CreatedAt),
		ExpiresAt:      models.Timestamp(sess.LastSeen().Add(ttl)),
		Pointer:        toWeekPointer(snap.Pointer),
		Grid:           toGrid(snap.Pointer.Year, snap.Pointer.Month, snap.Grid),
		HasTwoMonths:   snap.HasTwoMonths,
		SecondaryMonth: snap.SecondaryMonth,
		Station:        toStationDetail(snap.Station),
	}
	if snap.CurrentWeekDays != nil {
		out.CurrentWeekDays = toWeek(*snap.CurrentWeekDays)
	}
	return out
}

func toSyncResult(r *worker.SyncResult) models.SyncResult {
	out := models.SyncResult{
		StartTime:  models.Timestamp(r.StartTime),
		EndTime:    models.Timestamp(r.EndTime),
		DurationMs: r.Duration.Milliseconds(),
		Stations:   r.Stations,
		Bookings:   r.Bookings,
		Skipped:    r.Skipped,
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, models.SyncError{StationID: e.StationID, Error: e.Error})
	}
	sort.Slice(out.Errors, func(i, j int) bool { return out.Errors[i].StationID < out.Errors[j].StationID })
	return out
}

func toSyncMetrics(m worker.SyncMetrics) *models.SyncMetrics {
	out := &models.SyncMetrics{
		Runs:            m.Runs,
		FailedRuns:      m.FailedRuns,
		StationsSynced:  m.StationsSynced,
		BookingsSynced:  m.BookingsSynced,
		StationsSkipped: m.StationsSkipped,
		LastDurationMs:  m.LastRunDuration.Milliseconds(),
		LastError:       m.LastError,
	}
	if !m.LastRunAt.IsZero() {
		at := models.Timestamp(m.LastRunAt)
		out.LastRunAt = &at
	}
	return out
}
