package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationcal/stationcal/internal/api/models"
)

func TestNewProblem_DefaultTitle(t *testing.T) {
	p := models.NewProblem(models.ProblemTypeNotFound, "", http.StatusNotFound, "req_abc")

	assert.Equal(t, "Not found", p.Title)
	assert.Equal(t, "req_abc", p.TraceID)
	assert.Empty(t, p.Detail)
	assert.Nil(t, p.Errors)
}

func TestNewProblem_ExplicitTitle(t *testing.T) {
	p := models.NewProblem(models.ProblemTypeNotFound, "Station missing", http.StatusNotFound, "req_abc")

	assert.Equal(t, "Station missing", p.Title)
}

func TestProblem_Builders(t *testing.T) {
	p := models.NewProblem(models.ProblemTypeValidation, "", http.StatusBadRequest, "req_abc").
		WithDetail("month must be between 0 and 11").
		WithInstance("/v1/calendar/grid").
		WithErrors([]models.FieldError{{Field: "month", Message: "out of range", Code: models.CodeOutOfRange}})

	assert.Equal(t, "month must be between 0 and 11", p.Detail)
	assert.Equal(t, "/v1/calendar/grid", p.Instance)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, models.CodeOutOfRange, p.Errors[0].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_abc", "invalid query", []models.FieldError{
		{Field: "kind", Message: "must be start or end", Code: models.CodeInvalid},
	}).WithInstance("/v1/stations/st-1/days/2024-03-20/bookings")

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_abc", w.Header().Get("X-Request-Id"))

	var got models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, *p, got)
}

func TestProblem_WriteWithoutTraceID(t *testing.T) {
	w := httptest.NewRecorder()
	models.NewInternalError("", "boom").Write(w)

	assert.Empty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProblemConstructors(t *testing.T) {
	tests := []struct {
		name       string
		problem    *models.Problem
		wantType   string
		wantTitle  string
		wantStatus int
	}{
		{"bad request", models.NewBadRequest("r", "d", nil), models.ProblemTypeValidation, "Validation error", http.StatusBadRequest},
		{"unauthorized", models.NewUnauthorized("r", "d"), models.ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized},
		{"forbidden", models.NewForbidden("r", "d"), models.ProblemTypeForbidden, "Forbidden", http.StatusForbidden},
		{"not found", models.NewNotFound("r", "d"), models.ProblemTypeNotFound, "Not found", http.StatusNotFound},
		{"conflict", models.NewConflict("r", "d"), models.ProblemTypeConflict, "Conflict", http.StatusConflict},
		{"too many requests", models.NewTooManyRequests("r", "d"), models.ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests},
		{"internal", models.NewInternalError("r", "d"), models.ProblemTypeInternal, "Internal server error", http.StatusInternalServerError},
		{"bad gateway", models.NewBadGateway("r", "d"), models.ProblemTypeBadGateway, "Upstream error", http.StatusBadGateway},
		{"unavailable", models.NewServiceUnavailable("r", "d"), models.ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.problem.Type)
			assert.Equal(t, tt.wantTitle, tt.problem.Title)
			assert.Equal(t, tt.wantStatus, tt.problem.Status)
			assert.Equal(t, "d", tt.problem.Detail)
			assert.Equal(t, "r", tt.problem.TraceID)
		})
	}
}
