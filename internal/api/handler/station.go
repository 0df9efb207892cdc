package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/api/middleware"
	"github.com/stationcal/stationcal/internal/api/models"
	"github.com/stationcal/stationcal/internal/api/response"
	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/station"
)

// StationHandler handles station endpoints.
type StationHandler struct {
	service *station.Service
	logger  zerolog.Logger
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(service *station.Service, logger zerolog.Logger) *StationHandler {
	return &StationHandler{service: service, logger: logger}
}

// Search handles GET /v1/stations?q=&limit= - station autocomplete.
func (h *StationHandler) Search(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	limit, _ := queryInt(r, "limit", &errs)
	if limit < 0 || limit > station.MaxSearchLimit {
		errs.add("limit", "must be between 1 and 50", models.CodeOutOfRange)
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}
	if limit == 0 {
		limit = station.DefaultSearchLimit
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	stations, err := h.service.Search(r.Context(), query, limit)
	if err != nil {
		h.internalError(w, r, err, "station search failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.StationList{
		Items: toStations(stations),
		Query: query,
		Limit: limit,
	})
}

// Get handles GET /v1/stations/{stationId} - station with bookings by date.
func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Detail(r.Context(), chi.URLParam(r, "stationId"))
	if err != nil {
		h.stationError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toStationDetail(detail))
}

// DayBookings handles GET /v1/stations/{stationId}/days/{date}/bookings?kind=.
func (h *StationHandler) DayBookings(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationId")

	var errs fieldErrors
	day := parseDay(chi.URLParam(r, "date"), h.service.Location(), &errs)
	kind := parseKind(r, &errs)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid day query", errs)
		return
	}

	bookings, err := h.service.BookingsForDay(r.Context(), stationID, day.Date, kind)
	if err != nil {
		h.stationError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.DayBookings{
		StationID: stationID,
		Date:      day.Date.Format(models.DateLayout),
		Kind:      string(kind),
		Bookings:  toBookings(bookings),
	})
}

// ExportCSV handles GET /v1/stations/{stationId}/bookings.csv.
func (h *StationHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Get(r.Context(), chi.URLParam(r, "stationId"))
	if err != nil {
		h.stationError(w, r, err)
		return
	}

	response.CSV(w, r, summary.ID+"-bookings.csv")
	if err := booking.ExportCSV(w, summary.Bookings); err != nil {
		// Headers are gone; the truncated body is all the client gets.
		h.logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("station_id", summary.ID).
			Msg("csv export failed")
	}
}

func (h *StationHandler) stationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, station.ErrStationNotFound) {
		response.NotFound(w, r, "station not found")
		return
	}
	h.internalError(w, r, err, "failed to load station")
}

func (h *StationHandler) internalError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	h.logger.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg(detail)
	response.InternalError(w, r, detail)
}
