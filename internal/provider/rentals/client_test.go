package rentals_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationcal/stationcal/internal/provider/resilience"
	"github.com/stationcal/stationcal/internal/provider/rentals"
)

const stationsJSON = `[
  {
    "id": "1",
    "name": "Berlin",
    "bookings": [
      {"id": "1", "pickupReturnStationId": "1", "startDate": "2024-03-20", "endDate": "2024-03-25", "customerName": "John Doe"},
      {"id": "2", "startDate": "2024-03-20T10:00:00Z", "endDate": "2024-03-21T09:00:00Z", "customerName": "Jane Smith"}
    ]
  },
  {"id": "2", "name": "Munich", "bookings": []}
]`

const bookingsJSON = `[
  {"id": "1", "pickupReturnStationId": "1", "startDate": "2024-03-20", "endDate": "2024-03-25", "customerName": "John Doe"}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *rentals.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := resilience.NewClient(resilience.ClientConfig{
		Name:            rentals.ProviderName,
		Timeout:         time.Second,
		MaxRetries:      1,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
	})

	return rentals.NewClient(rentals.ClientConfig{
		BaseURL:    server.URL + "/",
		APIKey:     "secret",
		HTTPClient: httpClient,
		Logger:     zerolog.Nop(),
	})
}

func TestClient_GetStations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(stationsJSON))
	})

	stations, err := client.GetStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)

	berlin := stations[0]
	assert.Equal(t, "1", berlin.ID)
	assert.Equal(t, "Berlin", berlin.Name)
	require.Len(t, berlin.Bookings, 2)
	assert.Equal(t, "John Doe", berlin.Bookings[0].CustomerName)
	assert.Equal(t, "1", berlin.Bookings[1].PickupReturnStationID, "missing station reference is filled in")

	assert.NotNil(t, stations[1].Bookings)
	assert.Empty(t, stations[1].Bookings)
}

func TestClient_GetBookings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings", r.URL.Path)
		_, _ = w.Write([]byte(bookingsJSON))
	})

	bookings, err := client.GetBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "2024-03-20", bookings[0].StartDate)
	assert.Equal(t, "2024-03-25", bookings[0].EndDate)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetStations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 401")
}

func TestClient_ServerErrorAfterRetries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetBookings(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 502")
}

func TestClient_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	})

	_, err := client.GetStations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestClient_Name(t *testing.T) {
	client := rentals.NewClient(rentals.ClientConfig{BaseURL: "http://localhost"})
	assert.Equal(t, "rentals", client.Name())
}
