// Package rentals is the client for the upstream rental backend that owns
// stations and bookings.
package rentals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/provider/resilience"
	"github.com/stationcal/stationcal/internal/station"
)

// ProviderName identifies the rental backend in the provider registry.
const ProviderName = "rentals"

// ClientConfig holds configuration for the rentals client.
type ClientConfig struct {
	// BaseURL is the backend root, e.g. https://rentals.example.com/api (required).
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// HTTPClient defaults to a resilient client with default settings.
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Client fetches stations and bookings from the rental backend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new rentals client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetStations fetches every station together with its bookings.
func (c *Client) GetStations(ctx context.Context) ([]*station.Summary, error) {
	var payload []stationResponse
	if err := c.get(resilience.WithOperation(ctx, "list_stations"), "stations", &payload); err != nil {
		return nil, err
	}

	stations := make([]*station.Summary, 0, len(payload))
	for i := range payload {
		stations = append(stations, payload[i].toSummary())
	}

	c.logger.Debug().Int("stations", len(stations)).Msg("fetched stations")
	return stations, nil
}

// GetBookings fetches every booking across all stations.
func (c *Client) GetBookings(ctx context.Context) ([]*booking.Booking, error) {
	var payload []bookingResponse
	if err := c.get(resilience.WithOperation(ctx, "list_bookings"), "bookings", &payload); err != nil {
		return nil, err
	}

	bookings := make([]*booking.Booking, 0, len(payload))
	for i := range payload {
		bookings = append(bookings, payload[i].toBooking())
	}

	c.logger.Debug().Int("bookings", len(bookings)).Msg("fetched bookings")
	return bookings, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

type bookingResponse struct {
	ID                    string `json:"id"`
	PickupReturnStationID string `json:"pickupReturnStationId"`
	StartDate             string `json:"startDate"`
	EndDate               string `json:"endDate"`
	CustomerName          string `json:"customerName"`
}

func (b *bookingResponse) toBooking() *booking.Booking {
	return &booking.Booking{
		ID:                    b.ID,
		PickupReturnStationID: b.PickupReturnStationID,
		StartDate:             b.StartDate,
		EndDate:               b.EndDate,
		CustomerName:          b.CustomerName,
	}
}

type stationResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Bookings []bookingResponse `json:"bookings"`
}

func (s *stationResponse) toSummary() *station.Summary {
	bookings := make([]*booking.Booking, 0, len(s.Bookings))
	for i := range s.Bookings {
		b := s.Bookings[i].toBooking()
		// Embedded bookings may omit the station reference.
		if b.PickupReturnStationID == "" {
			b.PickupReturnStationID = s.ID
		}
		bookings = append(bookings, b)
	}
	return &station.Summary{
		ID:       s.ID,
		Name:     s.Name,
		Bookings: bookings,
	}
}
