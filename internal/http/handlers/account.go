package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/ticket-booking-client/internal/http/errors"
	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/pages"
)

// depositForm — сумма приходит так, как её ввёл пользователь:
// строкой или числом. Разбирает её контроллер.
type depositForm struct {
	Amount json.RawMessage `json:"amount"`
}

func (f depositForm) raw() string {
	var s string
	if err := json.Unmarshal(f.Amount, &s); err == nil {
		return s
	}

	raw := strings.TrimSpace(string(f.Amount))
	if raw == "null" {
		return ""
	}

	return raw
}

type depositStatusForm struct {
	Status string `json:"status"`
}

func (h *Handlers) account(r *http.Request) (*pages.AccountController, *pages.Recorder) {
	p := h.page(r)
	return pages.NewAccountController(p.api, p.store, p.view), p.view
}

// Account — GET /account: профиль и последние пополнения.
func (h *Handlers) Account(w http.ResponseWriter, r *http.Request) {
	c, view := h.account(r)
	respond(w, r, view, c.Load(r.Context()))
}

// CreateDeposit — POST /account/deposits.
func (h *Handlers) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var in depositForm
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, view := h.account(r)
	respond(w, r, view, c.CreateDeposit(r.Context(), in.raw()))
}

// ChangeDepositStatus — POST /account/deposits/{id}/status.
func (h *Handlers) ChangeDepositStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "депозит")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in depositStatusForm
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, view := h.account(r)
	respond(w, r, view, c.ChangeDepositStatus(r.Context(), id, in.Status))
}

// ChangePassword — PUT /account/password.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in models.ChangePasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, view := h.account(r)
	respond(w, r, view, c.ChangePassword(r.Context(), in.OldPassword, in.NewPassword))
}

// Logout — POST /account/logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	c, view := h.account(r)
	respond(w, r, view, c.Logout(r.Context()))
}
