package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/ticket-booking-client/internal/http/errors"
	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/pages"
)

func (h *Handlers) booking(r *http.Request) (*pages.BookingController, *pages.Recorder) {
	p := h.page(r)
	return pages.NewBookingController(p.api, p.store, p.view), p.view
}

// SearchTickets — POST /tickets/search.
func (h *Handlers) SearchTickets(w http.ResponseWriter, r *http.Request) {
	var q models.TicketSearch
	if err := decodeStrict(r, &q); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, view := h.booking(r)
	respond(w, r, view, c.Search(r.Context(), q))
}

// ListBookings — GET /bookings.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	c, view := h.booking(r)
	respond(w, r, view, c.List(r.Context()))
}

// CreateBooking — POST /bookings.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in models.BookingCreateRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, view := h.booking(r)
	respond(w, r, view, c.Book(r.Context(), in.TicketID, in.TicketQuantity))
}

// CancelBooking — POST /bookings/{id}/cancel.
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "бронирование")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, view := h.booking(r)
	respond(w, r, view, c.Cancel(r.Context(), id))
}
