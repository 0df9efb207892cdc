package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stationcal/stationcal/internal/api/models"
	"github.com/stationcal/stationcal/internal/calendar"
)

// fieldErrors accumulates validation errors for one request.
type fieldErrors []models.FieldError

func (fe *fieldErrors) add(field, message, code string) {
	*fe = append(*fe, models.FieldError{Field: field, Message: message, Code: code})
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, errs *fieldErrors) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.add(name, "must be an integer", models.CodeInvalid)
		return 0, false
	}
	return n, true
}

// requiredInt reads a mandatory integer query parameter.
func requiredInt(r *http.Request, name string, errs *fieldErrors) int {
	if strings.TrimSpace(r.URL.Query().Get(name)) == "" {
		errs.add(name, "is required", models.CodeRequired)
		return 0
	}
	n, _ := queryInt(r, name, errs)
	return n
}

func checkMonth(month int, field string, errs *fieldErrors) {
	if month < 0 || month >= calendar.MonthsInYear {
		errs.add(field, "must be between 0 and 11", models.CodeOutOfRange)
	}
}

func checkYear(year int, field string, errs *fieldErrors) {
	if year < 1 || year > 9999 {
		errs.add(field, "must be between 1 and 9999", models.CodeOutOfRange)
	}
}

// parseKind reads the kind query parameter, defaulting to start.
func parseKind(r *http.Request, errs *fieldErrors) calendar.Kind {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		return calendar.KindStart
	}
	kind, err := calendar.ParseKind(raw)
	if err != nil {
		errs.add("kind", "must be start or end", models.CodeInvalid)
	}
	return kind
}

// parseDay reads a YYYY-MM-DD path value as a calendar day in loc.
func parseDay(raw string, loc *time.Location, errs *fieldErrors) calendar.Day {
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		errs.add("date", "must be a date in YYYY-MM-DD format", models.CodeInvalid)
		return calendar.Day{}
	}
	y, m, d := t.Date()
	return calendar.NewDay(calendar.StartOfDay(y, m, d, loc))
}
