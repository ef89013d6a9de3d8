package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/ticket-booking-client/internal/http/handlers"
	"github.com/pribylovaa/ticket-booking-client/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger     *slog.Logger
	Timeout    time.Duration
	BasePath   string        // например, "/api"; если пустой — роуты на корне.
	SessionTTL time.Duration // срок жизни cookie sid.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.RequestID(),          // X-Request-Id до логирования
		middleware.Logging(opts.Logger), // request-scoped логгер в контексте
		middleware.Recover(),            // паника -> 500 с записью в лог
		middleware.Session(opts.SessionTTL),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех эндпойнтов страниц.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// auth
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	// account
	r.Get("/account", h.Account)
	r.Post("/account/deposits", h.CreateDeposit)
	r.Post("/account/deposits/{id}/status", h.ChangeDepositStatus)
	r.Put("/account/password", h.ChangePassword)
	r.Post("/account/logout", h.Logout)

	// tickets & bookings
	r.Post("/tickets/search", h.SearchTickets)
	r.Get("/bookings", h.ListBookings)
	r.Post("/bookings", h.CreateBooking)
	r.Post("/bookings/{id}/cancel", h.CancelBooking)
}
