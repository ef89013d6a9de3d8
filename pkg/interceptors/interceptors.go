// interceptors — обёртки над исполнителем исходящих HTTP-запросов
// (любой тип с методом Do, например *http.Client).
package interceptors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/pribylovaa/ticket-booking-client/pkg/log"
)

// Doer — исполнитель HTTP-запросов.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// DoerFunc адаптирует функцию к Doer.
type DoerFunc func(*http.Request) (*http.Response, error)

func (f DoerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

// Interceptor оборачивает Doer.
type Interceptor func(Doer) Doer

// Chain применяет интерсепторы в порядке перечисления: первый — внешний.
func Chain(d Doer, ics ...Interceptor) Doer {
	for i := len(ics) - 1; i >= 0; i-- {
		d = ics[i](d)
	}
	return d
}

// WithTimeout навешивает таймаут d на контекст запроса при его отсутствии.
//
// Контракт:
//  1. d <= 0 — запрос уходит без изменений;
//  2. deadline уже задан — не модифицируется;
//  3. иначе дедлайн покрывает и чтение тела: cancel вызывается
//     при закрытии тела ответа (или сразу при ошибке).
func WithTimeout(d time.Duration) Interceptor {
	return func(next Doer) Doer {
		if d <= 0 {
			return next
		}

		return DoerFunc(func(r *http.Request) (*http.Response, error) {
			if _, ok := r.Context().Deadline(); ok {
				return next.Do(r)
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)

			resp, err := next.Do(r.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}

			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// Recover превращает панику транспорта в ошибку и пишет её в лог
// со стеком. Логгер берётся из контекста запроса.
func Recover() Interceptor {
	return func(next Doer) Doer {
		return DoerFunc(func(r *http.Request) (resp *http.Response, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					log.From(r.Context()).Error("panic_recovered",
						slog.String("method", r.Method),
						slog.String("url", r.URL.Redacted()),
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
					)
					resp, err = nil, fmt.Errorf("interceptors: panic in transport: %v", rec)
				}
			}()

			return next.Do(r)
		})
	}
}
