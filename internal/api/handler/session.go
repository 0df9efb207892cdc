package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/api/middleware"
	"github.com/stationcal/stationcal/internal/api/models"
	"github.com/stationcal/stationcal/internal/api/response"
	"github.com/stationcal/stationcal/internal/calendar"
	"github.com/stationcal/stationcal/internal/station"
	"github.com/stationcal/stationcal/internal/store"
)

// SessionHandler exposes server-side calendar stores.
type SessionHandler struct {
	sessions *store.Registry
	stations *station.Service
	logger   zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *store.Registry, stations *station.Service, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, stations: stations, logger: logger}
}

// Create handles POST /v1/sessions - a new store on the current week.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	response.Created(w, r, "/v1/sessions/"+sess.ID, h.view(sess, sess.Store.Snapshot()))
}

// Get handles GET /v1/sessions/{sessionId}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, h.view(sess, sess.Store.Snapshot()))
}

// NextWeek handles POST /v1/sessions/{sessionId}/weeks:next.
func (h *SessionHandler) NextWeek(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, h.view(sess, sess.Store.NextWeek()))
}

// PrevWeek handles POST /v1/sessions/{sessionId}/weeks:prev.
func (h *SessionHandler) PrevWeek(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, h.view(sess, sess.Store.PrevWeek()))
}

// CurrentWeek handles POST /v1/sessions/{sessionId}/weeks:current.
func (h *SessionHandler) CurrentWeek(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, h.view(sess, sess.Store.GoToCurrentWeek()))
}

// ChangeMonth handles PUT /v1/sessions/{sessionId}/month - jump to week 1
// of the given month.
func (h *SessionHandler) ChangeMonth(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.ChangeMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var errs fieldErrors
	if req.Year == nil {
		errs.add("year", "is required", models.CodeRequired)
	} else {
		checkYear(*req.Year, "year", &errs)
	}
	if req.Month == nil {
		errs.add("month", "is required", models.CodeRequired)
	} else {
		checkMonth(*req.Month, "month", &errs)
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	response.JSON(w, r, http.StatusOK, h.view(sess, sess.Store.ChangeMonth(*req.Year, *req.Month)))
}

// SelectStation handles PUT /v1/sessions/{sessionId}/station.
func (h *SessionHandler) SelectStation(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SelectStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	stationID := strings.TrimSpace(req.StationID)
	if stationID == "" {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "stationId", Message: "is required", Code: models.CodeRequired},
		})
		return
	}

	summary, err := h.stations.Get(r.Context(), stationID)
	if err != nil {
		if errors.Is(err, station.ErrStationNotFound) {
			response.NotFound(w, r, "station not found")
			return
		}
		h.internalError(w, r, err, "failed to load station")
		return
	}

	snap, err := sess.Store.SelectStation(summary)
	if err != nil {
		if errors.Is(err, calendar.ErrInvalidDate) {
			response.BadGateway(w, r, "station has bookings with invalid dates")
			return
		}
		h.internalError(w, r, err, "failed to select station")
		return
	}

	response.JSON(w, r, http.StatusOK, h.view(sess, snap))
}

// DayBookings handles GET /v1/sessions/{sessionId}/days/{date}/bookings?kind=
// against the session's selected station.
func (h *SessionHandler) DayBookings(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var errs fieldErrors
	day := parseDay(chi.URLParam(r, "date"), h.stations.Location(), &errs)
	kind := parseKind(r, &errs)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid day query", errs)
		return
	}

	snap := sess.Store.Snapshot()
	response.JSON(w, r, http.StatusOK, models.DayBookings{
		StationID: snap.StationID(),
		Date:      day.Date.Format(models.DateLayout),
		Kind:      string(kind),
		Bookings:  toBookings(snap.BookingsForDay(day, kind)),
	})
}

// Delete handles DELETE /v1/sessions/{sessionId}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "sessionId")); err != nil {
		response.NotFound(w, r, "session not found")
		return
	}
	response.NoContent(w, r)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	sess, err := h.sessions.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		response.NotFound(w, r, "session not found")
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) view(sess *store.Session, snap store.Snapshot) models.Session {
	return toSession(sess, snap, h.sessions.TTL())
}

func (h *SessionHandler) internalError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	h.logger.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg(detail)
	response.InternalError(w, r, detail)
}
