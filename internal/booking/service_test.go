package booking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationcal/stationcal/internal/booking"
)

func seededRepo(t *testing.T) *booking.InMemoryRepository {
	t.Helper()

	repo := booking.NewInMemoryRepository()
	err := repo.UpsertMany(context.Background(), []*booking.Booking{
		{ID: "b-2", PickupReturnStationID: "st-1", StartDate: "2024-03-22", EndDate: "2024-03-24", CustomerName: "Jane Smith"},
		{ID: "b-1", PickupReturnStationID: "st-1", StartDate: "2024-03-20", EndDate: "2024-03-25", CustomerName: "John Doe"},
		{ID: "b-3", PickupReturnStationID: "st-2", StartDate: "2024-03-20", EndDate: "2024-03-21", CustomerName: "Max Mustermann"},
	})
	require.NoError(t, err)
	return repo
}

func TestService_Get(t *testing.T) {
	svc := booking.NewService(seededRepo(t))

	b, err := svc.Get(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", b.CustomerName)
	assert.Equal(t, "st-1", b.PickupReturnStationID)
}

func TestService_Get_NotFound(t *testing.T) {
	svc := booking.NewService(seededRepo(t))

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestService_Get_BlankID(t *testing.T) {
	svc := booking.NewService(seededRepo(t))

	_, err := svc.Get(context.Background(), "  ")
	assert.ErrorIs(t, err, booking.ErrInvalidBookingID)
}

func TestService_ListByStation(t *testing.T) {
	svc := booking.NewService(seededRepo(t))

	bookings, err := svc.ListByStation(context.Background(), "st-1")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "b-1", bookings[0].ID, "ordered by start date")
	assert.Equal(t, "b-2", bookings[1].ID)

	none, err := svc.ListByStation(context.Background(), "st-unknown")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()

	b, err := repo.Get(ctx, "b-1")
	require.NoError(t, err)
	b.CustomerName = "changed"

	again, err := repo.Get(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", again.CustomerName)
}

func TestInMemoryRepository_UpsertReplaces(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()

	err := repo.UpsertMany(ctx, []*booking.Booking{
		{ID: "b-1", PickupReturnStationID: "st-2", StartDate: "2024-04-01", EndDate: "2024-04-02", CustomerName: "John Doe"},
	})
	require.NoError(t, err)

	st1, err := repo.ListByStation(ctx, "st-1")
	require.NoError(t, err)
	assert.Len(t, st1, 1)

	st2, err := repo.ListByStation(ctx, "st-2")
	require.NoError(t, err)
	assert.Len(t, st2, 2)
}
