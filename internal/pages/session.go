package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/pkg/log"
)

// ErrNotAuthenticated — в хранилище нет пары токенов.
var ErrNotAuthenticated = errors.New("not authenticated")

// session — общая часть контроллеров, работающих от имени вошедшего
// пользователя: проверка токенов и единая реакция на ошибки бэкенда.
type session struct {
	api   *client.API
	store tokens.Store
	view  View

	expired sync.Once
}

// requireAuth требует оба токена; иначе уводит на страницу логина.
func (s *session) requireAuth(ctx context.Context, op string) error {
	ok, err := tokens.Authenticated(ctx, s.store)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		s.view.Notify(MsgNotAuthorized)
		s.view.Navigate(PageLogin)
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	return nil
}

// report показывает ошибку вызова пользователю и возвращает её обёрнутой.
//
// Токены очищаются только при истёкшей сессии (не удался refresh).
// Прочие 401 показываются как обычный отказ бэкенда, пара токенов остаётся.
// Об истечении сессии сообщается один раз за жизнь контроллера, даже если
// параллельные запросы упали одновременно.
func (s *session) report(ctx context.Context, op string, err error, fallback string) error {
	lg := log.From(ctx)

	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		if err := s.store.Clear(ctx); err != nil {
			lg.Error("token_store_clear_failed", slog.String("op", op), slog.String("err", err.Error()))
		}
		s.expired.Do(func() {
			s.view.Notify(MsgSessionExpired)
			s.view.Navigate(PageAuth)
		})
		lg.Info("session_expired", slog.String("op", op), slog.String("err", err.Error()))

	case errors.Is(err, context.Canceled):
		lg.Debug("request_canceled", slog.String("op", op))

	case errors.Is(err, client.ErrTransport):
		s.view.Notify(MsgConnection)
		lg.Error("backend_unreachable", slog.String("op", op), slog.String("err", err.Error()))

	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
		s.view.Notify(apiErr.Message(MsgUnauthorized))
		lg.Warn("backend_unauthorized",
			slog.String("op", op),
			slog.String("code", apiErr.Code),
		)

	case errors.As(err, &apiErr):
		s.view.Notify(apiErr.Message(fallback))
		lg.Warn("backend_rejected",
			slog.String("op", op),
			slog.Int("status", apiErr.Status),
			slog.String("code", apiErr.Code),
		)

	default:
		s.view.Notify(fallback)
		lg.Error("request_failed", slog.String("op", op), slog.String("err", err.Error()))
	}

	return fmt.Errorf("%s: %w", op, err)
}
