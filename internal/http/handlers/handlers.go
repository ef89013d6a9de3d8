// handlers — JSON-обёртки над контроллерами страниц.
//
// Каждый запрос получает свой Recorder и хранилище токенов сессии
// из cookie sid; телом ответа служит всё, что контроллер показал.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	apierrors "github.com/pribylovaa/ticket-booking-client/internal/http/errors"
	"github.com/pribylovaa/ticket-booking-client/internal/http/middleware"
	"github.com/pribylovaa/ticket-booking-client/internal/pages"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/internal/validate"
)

// APIFactory собирает клиент бэкенда поверх хранилища сессии.
type APIFactory func(store tokens.Store) *client.API

// Handlers агрегирует зависимости.
type Handlers struct {
	provider tokens.Provider
	newAPI   APIFactory
	now      func() time.Time
}

func New(provider tokens.Provider, newAPI APIFactory) *Handlers {
	return &Handlers{provider: provider, newAPI: newAPI, now: time.Now}
}

// WithClock подменяет часы для проверки возраста при регистрации.
func (h *Handlers) WithClock(now func() time.Time) *Handlers {
	h.now = now
	return h
}

// response — снимок вида плюс ошибка, если действие не удалось.
type response struct {
	pages.Snapshot
	Error *apierrors.APIError `json:"error,omitempty"`
}

// page — зависимости одного запроса.
type page struct {
	api   *client.API
	store tokens.Store
	view  *pages.Recorder
}

func (h *Handlers) page(r *http.Request) page {
	store := h.provider.ForSession(middleware.SessionID(r.Context()))
	return page{api: h.newAPI(store), store: store, view: pages.NewRecorder()}
}

// respond пишет снимок вида; статус определяется ошибкой контроллера.
func respond(w http.ResponseWriter, r *http.Request, view *pages.Recorder, err error) {
	resp := response{Snapshot: view.Snapshot()}
	status := http.StatusOK

	if err != nil {
		var body apierrors.ErrorResponse
		status, body = apierrors.ToHTTP(err)
		body.Error.RequestID = r.Header.Get(middleware.HeaderRequestID)
		resp.Error = &body.Error
	}

	writeJSON(w, status, resp)
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: неизвестные поля запрещены.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err)
	}

	return nil
}

// pathID — положительный числовой параметр пути.
func pathID(r *http.Request, name, what string) (int64, error) {
	return validate.ID(chi.URLParam(r, name), what)
}
