package handler

import (
	"net/http"
	"time"

	"github.com/stationcal/stationcal/internal/api/models"
	"github.com/stationcal/stationcal/internal/api/response"
	"github.com/stationcal/stationcal/internal/calendar"
)

// CalendarHandler serves stateless calendar arithmetic.
type CalendarHandler struct {
	clock calendar.Clock
	loc   *time.Location
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(clock calendar.Clock, loc *time.Location) *CalendarHandler {
	if clock == nil {
		clock = calendar.SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarHandler{clock: clock, loc: loc}
}

// Grid handles GET /v1/calendar/grid - the five-week view of a month.
// Without year and month the current month is returned.
func (h *CalendarHandler) Grid(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	year, hasYear := queryInt(r, "year", &errs)
	month, hasMonth := queryInt(r, "month", &errs)

	if hasYear != hasMonth {
		errs.add("month", "year and month must be given together", models.CodeRequired)
	}
	if hasYear && hasMonth {
		checkYear(year, "year", &errs)
		checkMonth(month, "month", &errs)
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}

	if !hasYear {
		now := h.clock.Now().In(h.loc)
		year, month = now.Year(), int(now.Month())-1
	}

	response.JSON(w, r, http.StatusOK, toGrid(year, month, calendar.BuildGrid(year, month, h.loc)))
}

// CurrentWeek handles GET /v1/calendar/weeks/current.
func (h *CalendarHandler) CurrentWeek(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, toWeekPointer(calendar.CurrentWeek(h.clock, h.loc)))
}

// NextWeek handles GET /v1/calendar/weeks/next?week&month&year.
func (h *CalendarHandler) NextWeek(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pointer(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, toWeekPointer(p.Next()))
}

// PrevWeek handles GET /v1/calendar/weeks/prev?week&month&year.
func (h *CalendarHandler) PrevWeek(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pointer(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, toWeekPointer(p.Prev()))
}

// pointer reads a week pointer from the query. Week 5 and 6 are accepted
// since the current week of a long month can be either.
func (h *CalendarHandler) pointer(w http.ResponseWriter, r *http.Request) (calendar.WeekPointer, bool) {
	var errs fieldErrors
	p := calendar.WeekPointer{
		Week:  requiredInt(r, "week", &errs),
		Month: requiredInt(r, "month", &errs),
		Year:  requiredInt(r, "year", &errs),
	}

	if len(errs) == 0 {
		if p.Week < 1 || p.Week > 6 {
			errs.add("week", "must be between 1 and 6", models.CodeOutOfRange)
		}
		checkMonth(p.Month, "month", &errs)
		checkYear(p.Year, "year", &errs)
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid week pointer", errs)
		return calendar.WeekPointer{}, false
	}
	return p, true
}
