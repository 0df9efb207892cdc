package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationcal/stationcal/internal/calendar"
)

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	tests := []struct {
		value string
		want  time.Time
	}{
		{"2024-03-20", time.Date(2024, time.March, 20, 0, 0, 0, 0, loc)},
		{"2024-03-20T09:30:00", time.Date(2024, time.March, 20, 9, 30, 0, 0, loc)},
		{"2024-03-20T09:30", time.Date(2024, time.March, 20, 9, 30, 0, 0, loc)},
		{"2024-03-20 09:30:00", time.Date(2024, time.March, 20, 9, 30, 0, 0, loc)},
		{"2024-03-20T07:30:00Z", time.Date(2024, time.March, 20, 9, 30, 0, 0, loc)},
		{"2024-03-20T23:00:00.5Z", time.Date(2024, time.March, 21, 1, 0, 0, 500000000, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := calendar.ParseDate(tt.value, loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, loc, got.Location())
		})
	}
}

func TestParseDate_NilLocationIsUTC(t *testing.T) {
	got, err := calendar.ParseDate("2024-03-20", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
}

func TestParseDate_Invalid(t *testing.T) {
	for _, value := range []string{"", "yesterday", "20/03/2024", "2024-02-30"} {
		_, err := calendar.ParseDate(value, time.UTC)
		assert.ErrorIs(t, err, calendar.ErrInvalidDate, value)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	assert.True(t, calendar.SameDay(a, a.Add(23*time.Hour)))
	assert.False(t, calendar.SameDay(a, a.Add(24*time.Hour)))
	assert.False(t, calendar.SameDay(a, a.AddDate(1, 0, 0)))
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, at, calendar.FixedClock(at).Now())
}

func TestParseDate_DateOnlyInDSTGap(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	got, err := calendar.ParseDate("2024-09-08", loc)
	require.NoError(t, err)

	y, m, d := got.Date()
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.September, m)
	assert.Equal(t, 8, d)
}
