package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/calendar"
)

func testBookings() []*booking.Booking {
	return []*booking.Booking{
		{
			ID:                    "1",
			PickupReturnStationID: "station-1",
			StartDate:             "2024-03-20",
			EndDate:               "2024-03-25",
			CustomerName:          "John Doe",
		},
		{
			ID:                    "2",
			PickupReturnStationID: "station-2",
			StartDate:             "2024-03-20",
			EndDate:               "2024-03-21",
			CustomerName:          "Jane Smith",
		},
	}
}

func TestGroupByDate(t *testing.T) {
	bookings := testBookings()

	idx, err := calendar.GroupByDate(bookings, time.UTC)
	require.NoError(t, err)

	assert.Len(t, idx.Bucket(2024, time.March, 20), 2)
	assert.Len(t, idx.Bucket(2024, time.March, 25), 1)
	assert.Len(t, idx.Bucket(2024, time.March, 21), 1)
	assert.Empty(t, idx.Bucket(2024, time.March, 22))
}

func TestGroupByDate_SharesBookingPointers(t *testing.T) {
	bookings := testBookings()

	idx, err := calendar.GroupByDate(bookings, time.UTC)
	require.NoError(t, err)

	assert.Same(t, bookings[0], idx.Bucket(2024, time.March, 20)[0])
	assert.Same(t, bookings[0], idx.Bucket(2024, time.March, 25)[0])
	assert.Same(t, bookings[1], idx.Bucket(2024, time.March, 20)[1], "bucket keeps input order")
}

func TestGroupByDate_SameDayBookingOnce(t *testing.T) {
	bookings := []*booking.Booking{
		{ID: "a", StartDate: "2024-06-01T08:00:00Z", EndDate: "2024-06-01T18:00:00Z"},
	}

	idx, err := calendar.GroupByDate(bookings, time.UTC)
	require.NoError(t, err)

	assert.Len(t, idx.Bucket(2024, time.June, 1), 1)
	assert.Equal(t, 1, idx.Entries())
}

func TestGroupByDate_AcrossYearBoundary(t *testing.T) {
	bookings := []*booking.Booking{
		{ID: "nye", StartDate: "2024-12-30", EndDate: "2025-01-02"},
	}

	idx, err := calendar.GroupByDate(bookings, time.UTC)
	require.NoError(t, err)

	assert.Len(t, idx.Bucket(2024, time.December, 30), 1)
	assert.Len(t, idx.Bucket(2025, time.January, 2), 1)
	assert.Len(t, idx, 2)
}

func TestGroupByDate_UsesLocation(t *testing.T) {
	// 23:30 UTC is already the next day two hours east.
	bookings := []*booking.Booking{
		{ID: "late", StartDate: "2024-03-09T23:30:00Z", EndDate: "2024-03-12T10:00:00Z"},
	}
	loc := time.FixedZone("UTC+2", 2*60*60)

	idx, err := calendar.GroupByDate(bookings, loc)
	require.NoError(t, err)

	assert.Empty(t, idx.Bucket(2024, time.March, 9))
	assert.Len(t, idx.Bucket(2024, time.March, 10), 1)
}

func TestGroupByDate_EveryBookingOnceOrTwice(t *testing.T) {
	bookings := []*booking.Booking{
		{ID: "1", StartDate: "2024-01-01", EndDate: "2024-01-05"},
		{ID: "2", StartDate: "2024-01-01T09:00:00Z", EndDate: "2024-01-01T17:00:00Z"},
		{ID: "3", StartDate: "2024-01-31", EndDate: "2024-02-01"},
		{ID: "4", StartDate: "2024-02-28", EndDate: "2024-03-01"},
		{ID: "5", StartDate: "2024-01-05", EndDate: "2024-01-06"},
	}

	idx, err := calendar.GroupByDate(bookings, time.UTC)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, months := range idx {
		for _, days := range months {
			for _, bucket := range days {
				for _, b := range bucket {
					seen[b.ID]++
				}
			}
		}
	}

	for _, b := range bookings {
		assert.GreaterOrEqual(t, seen[b.ID], 1, b.ID)
		assert.LessOrEqual(t, seen[b.ID], 2, b.ID)
	}
	assert.Equal(t, 1, seen["2"])
	assert.Equal(t, 9, idx.Entries())
}

func TestGroupByDate_DoesNotMutateInput(t *testing.T) {
	bookings := testBookings()
	before := make([]booking.Booking, len(bookings))
	for i, b := range bookings {
		before[i] = *b
	}

	_, err := calendar.GroupByDate(bookings, time.UTC)
	require.NoError(t, err)

	for i, b := range bookings {
		assert.Equal(t, before[i], *b)
	}
}

func TestGroupByDate_InvalidDate(t *testing.T) {
	tests := []struct {
		name    string
		booking *booking.Booking
	}{
		{"bad start", &booking.Booking{ID: "x", StartDate: "not-a-date", EndDate: "2024-01-01"}},
		{"bad end", &booking.Booking{ID: "y", StartDate: "2024-01-01", EndDate: "2024-13-45"}},
		{"empty start", &booking.Booking{ID: "z", StartDate: "", EndDate: "2024-01-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := calendar.GroupByDate([]*booking.Booking{tt.booking}, time.UTC)
			require.Error(t, err)
			assert.ErrorIs(t, err, calendar.ErrInvalidDate)
			assert.Contains(t, err.Error(), tt.booking.ID)
			assert.Nil(t, idx)
		})
	}
}

func TestGroupByDate_Empty(t *testing.T) {
	idx, err := calendar.GroupByDate(nil, time.UTC)
	require.NoError(t, err)
	assert.NotNil(t, idx)
	assert.Zero(t, idx.Entries())
}

func TestIndex_NilBucket(t *testing.T) {
	var idx calendar.Index
	assert.Nil(t, idx.Bucket(2024, time.March, 20))
	assert.Zero(t, idx.Entries())
}

func TestGroupByDate_DSTGapDate(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	bookings := []*booking.Booking{
		{ID: "1", StartDate: "2024-09-08", EndDate: "2024-09-10"},
		{ID: "2", StartDate: "2024-09-06", EndDate: "2024-09-07"},
	}

	idx, err := calendar.GroupByDate(bookings, loc)
	require.NoError(t, err)

	assert.Len(t, idx.Bucket(2024, time.September, 7), 1)
	assert.Len(t, idx.Bucket(2024, time.September, 8), 1)
	assert.Len(t, idx.Bucket(2024, time.September, 10), 1)

	grid := calendar.BuildGrid(2024, 8, loc)
	row, _ := grid.Week(2)
	got := calendar.BookingsForDay(idx, row[0], calendar.KindStart)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}
