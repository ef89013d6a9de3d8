package fakebackend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/pkg/log"
)

type ctxKey struct{}

// Handler собирает REST-роутер стенда.
func (b *Backend) Handler(lg *slog.Logger) http.Handler {
	if lg == nil {
		lg = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqLog := lg.With(slog.String("request_id", req.Header.Get("X-Request-Id")))
			next.ServeHTTP(w, req.WithContext(log.Into(req.Context(), reqLog)))
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", b.handleRegister)
		r.Post("/login", b.handleLogin)
		r.Post("/refresh", b.handleRefresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(b.authenticate)

		r.Get("/users/info", b.handleUserInfo)
		r.Put("/users/change-password", b.handleChangePassword)

		r.Post("/deposits/create", b.handleDepositCreate)
		r.Post("/deposits/confirm", b.handleDepositConfirm)
		r.Get("/deposits/last", b.handleDepositsLast)

		r.Post("/tickets/search", b.handleTicketsSearch)

		r.Post("/bookings/create", b.handleBookingCreate)
		r.Get("/bookings/list", b.handleBookingsList)
		r.Post("/bookings/cancel", b.handleBookingCancel)
	})

	return r
}

// authenticate проверяет Bearer-токен; истёкший даёт 401 TOKEN_EXPIRED.
func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "

		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, prefix) || len(h) == len(prefix) {
			writeError(r.Context(), w, ErrAuthRequired)
			return
		}

		uid, err := b.parseAccess(strings.TrimSpace(h[len(prefix):]))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, uid)))
	})
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKey{}).(int64)
	return id
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if !decode(w, r, &in) {
		return
	}

	pair, err := b.Register(r.Context(), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if !decode(w, r, &in) {
		return
	}

	pair, err := b.Login(r.Context(), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in models.RefreshRequest
	if !decode(w, r, &in) {
		return
	}

	pair, err := b.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": pair.AccessToken})
}

func (b *Backend) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	p, err := b.UserInfo(userID(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in models.ChangePasswordRequest
	if !decode(w, r, &in) {
		return
	}

	if err := b.ChangePassword(userID(r), in); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeText(w, "Password updated successfully")
}

func (b *Backend) handleDepositCreate(w http.ResponseWriter, r *http.Request) {
	var in models.DepositCreateRequest
	if !decode(w, r, &in) {
		return
	}

	if _, err := b.CreateDeposit(userID(r), in.Amount); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeText(w, "Deposit created successfully.")
}

func (b *Backend) handleDepositConfirm(w http.ResponseWriter, r *http.Request) {
	var in models.DepositConfirmRequest
	if !decode(w, r, &in) {
		return
	}

	if err := b.ConfirmDeposit(userID(r), in.DepositID, in.Status); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeText(w, "Deposit "+string(in.Status)+" successfully.")
}

func (b *Backend) handleDepositsLast(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.LastDeposits(userID(r)))
}

func (b *Backend) handleTicketsSearch(w http.ResponseWriter, r *http.Request) {
	var in models.TicketSearch
	if !decode(w, r, &in) {
		return
	}

	page, err := b.SearchTickets(in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (b *Backend) handleBookingCreate(w http.ResponseWriter, r *http.Request) {
	var in models.BookingCreateRequest
	if !decode(w, r, &in) {
		return
	}

	bk, err := b.CreateBooking(userID(r), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, bk)
}

func (b *Backend) handleBookingsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.ListBookings(userID(r)))
}

func (b *Backend) handleBookingCancel(w http.ResponseWriter, r *http.Request) {
	var in models.BookingCancelRequest
	if !decode(w, r, &in) {
		return
	}

	if err := b.CancelBooking(userID(r), in.BookingID); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || json.Unmarshal(body, v) != nil {
		writeError(r.Context(), w, ErrInvalidBody)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain;charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, msg)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		log.From(ctx).Error("fake_backend_internal", slog.String("err", err.Error()))
		apiErr = newError(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}

	writeJSON(w, apiErr.Status, models.ErrorBody{Code: apiErr.Code, Messages: apiErr.Messages})
}
