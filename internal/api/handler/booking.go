package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stationcal/stationcal/internal/api/response"
	"github.com/stationcal/stationcal/internal/booking"
)

// BookingHandler handles booking endpoints.
type BookingHandler struct {
	service *booking.Service
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *booking.Service) *BookingHandler {
	return &BookingHandler{service: service}
}

// Get handles GET /v1/bookings/{bookingId}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidBookingID):
			response.BadRequest(w, r, "bookingId is required", nil)
		case errors.Is(err, booking.ErrBookingNotFound):
			response.NotFound(w, r, "booking not found")
		default:
			response.InternalError(w, r, "failed to load booking")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toBooking(b))
}
