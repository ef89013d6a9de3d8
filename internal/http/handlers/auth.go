package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/ticket-booking-client/internal/http/errors"
	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/pages"
)

// Register — POST /auth/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	p := h.page(r)
	err := pages.NewAuthController(p.api, p.store, p.view).WithClock(h.now).Register(r.Context(), in)
	respond(w, r, p.view, err)
}

// Login — POST /auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	p := h.page(r)
	err := pages.NewAuthController(p.api, p.store, p.view).Login(r.Context(), in.Email, in.Password)
	respond(w, r, p.view, err)
}
