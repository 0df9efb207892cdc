package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/calendar"
)

func dayOf(year int, month time.Month, day int) calendar.Day {
	return calendar.NewDay(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func TestBookingsForDay(t *testing.T) {
	idx, err := calendar.GroupByDate(testBookings(), time.UTC)
	require.NoError(t, err)

	tests := []struct {
		name    string
		day     calendar.Day
		kind    calendar.Kind
		wantIDs []string
	}{
		{"both start on the 20th", dayOf(2024, time.March, 20), calendar.KindStart, []string{"1", "2"}},
		{"nothing ends on the 20th", dayOf(2024, time.March, 20), calendar.KindEnd, []string{}},
		{"one ends on the 25th", dayOf(2024, time.March, 25), calendar.KindEnd, []string{"1"}},
		{"nothing starts on the 25th", dayOf(2024, time.March, 25), calendar.KindStart, []string{}},
		{"one ends on the 21st", dayOf(2024, time.March, 21), calendar.KindEnd, []string{"2"}},
		{"empty bucket", dayOf(2024, time.March, 22), calendar.KindStart, []string{}},
		{"other year", dayOf(2023, time.March, 20), calendar.KindStart, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calendar.BookingsForDay(idx, tt.day, tt.kind)
			require.NotNil(t, got)

			ids := make([]string, 0, len(got))
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestBookingsForDay_SameDayBookingMatchesBothKinds(t *testing.T) {
	idx, err := calendar.GroupByDate([]*booking.Booking{
		{ID: "short", StartDate: "2024-06-01T08:00:00Z", EndDate: "2024-06-01T18:00:00Z"},
	}, time.UTC)
	require.NoError(t, err)

	day := dayOf(2024, time.June, 1)
	assert.Len(t, calendar.BookingsForDay(idx, day, calendar.KindStart), 1)
	assert.Len(t, calendar.BookingsForDay(idx, day, calendar.KindEnd), 1)
}

func TestBookingsForDay_NilIndex(t *testing.T) {
	got := calendar.BookingsForDay(nil, dayOf(2024, time.March, 20), calendar.KindStart)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBookingsForDay_UnknownKind(t *testing.T) {
	idx, err := calendar.GroupByDate(testBookings(), time.UTC)
	require.NoError(t, err)

	assert.Empty(t, calendar.BookingsForDay(idx, dayOf(2024, time.March, 20), calendar.Kind("middle")))
}

func TestParseKind(t *testing.T) {
	kind, err := calendar.ParseKind("start")
	require.NoError(t, err)
	assert.Equal(t, calendar.KindStart, kind)

	kind, err = calendar.ParseKind("end")
	require.NoError(t, err)
	assert.Equal(t, calendar.KindEnd, kind)

	_, err = calendar.ParseKind("START")
	assert.Error(t, err)

	_, err = calendar.ParseKind("")
	assert.Error(t, err)
}
