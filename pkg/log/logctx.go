// log переносит request-scoped *slog.Logger через context.Context.
//
// Логгер кладётся в контекст на входе (HTTP-мидлвар шлюза, команда CLI)
// и достаётся в глубине (исполнитель запросов, контроллеры страниц),
// чтобы все записи одной операции несли общие атрибуты (request_id, session).
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста (или возвращает slog.Default()).
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}

// With обогащает логгер из контекста атрибутами и кладёт результат обратно.
// Возвращает новый контекст и сам обогащённый логгер.
func With(ctx context.Context, args ...any) (context.Context, *slog.Logger) {
	l := From(ctx).With(args...)
	return Into(ctx, l), l
}
