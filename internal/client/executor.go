// client — HTTP-клиент бэкенда бронирования билетов.
//
// Executor выполняет запросы с bearer-токеном из tokens.Store и прозрачно
// обновляет пару токенов, когда сервер отвечает 401 с кодом TOKEN_EXPIRED:
// один refresh и ровно один повтор исходного запроса. Вся логика повтора
// сосредоточена здесь; API поверх него даёт типизированные методы
// эндпойнтов.
//
// Executor безопасен для конкурентного использования. Одновременные
// запросы, упёршиеся в истёкший токен, разделяют один вызов refresh.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/pkg/log"
)

var (
	// ErrTransport — запрос не дошёл до сервера или ответ не прочитан
	// (сеть, DNS, отмена контекста). Повторов не делаем.
	ErrTransport = errors.New("transport failure")

	// ErrSessionExpired — обновить токены не удалось; хранилище очищено,
	// пользователю нужно аутентифицироваться заново.
	ErrSessionExpired = errors.New("session expired")
)

const (
	PathRefresh = "/auth/refresh"

	defaultUserAgent = "ticket-booking-client"
)

// Doer — исполнитель HTTP-запросов; *http.Client его реализует.
// Подменяется в тестах.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// RefreshFunc обменивает refresh-токен на новую пару.
// Пустой RefreshToken в ответе означает «refresh-токен не ротируется».
type RefreshFunc func(ctx context.Context, refreshToken string) (models.TokenPair, error)

// Request — описание исходящего запроса. Path относителен базового URL
// (абсолютный URL используется как есть). Body кодируется в JSON, если не nil.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
	// Anonymous — запрос без Authorization и без обновления токенов
	// (регистрация, логин).
	Anonymous bool
}

// Executor — исполнитель аутентифицированных запросов.
type Executor struct {
	baseURL   string
	store     tokens.Store
	doer      Doer
	refresh   RefreshFunc
	metrics   *Metrics
	userAgent string
	refreshes singleflight.Group
}

// Option настраивает Executor.
type Option func(*Executor)

// WithDoer задаёт HTTP-исполнитель (по умолчанию http.DefaultClient).
func WithDoer(d Doer) Option {
	return func(e *Executor) {
		if d != nil {
			e.doer = d
		}
	}
}

// WithRefresher подменяет обмен refresh-токена (по умолчанию POST /auth/refresh).
func WithRefresher(f RefreshFunc) Option {
	return func(e *Executor) {
		if f != nil {
			e.refresh = f
		}
	}
}

// WithMetrics подключает Prometheus-счётчики.
func WithMetrics(m *Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithUserAgent задаёт заголовок User-Agent исходящих запросов.
func WithUserAgent(ua string) Option {
	return func(e *Executor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// NewExecutor создаёт исполнитель для бэкенда baseURL с хранилищем токенов store.
func NewExecutor(baseURL string, store tokens.Store, opts ...Option) *Executor {
	e := &Executor{
		baseURL:   strings.TrimRight(baseURL, "/"),
		store:     store,
		doer:      http.DefaultClient,
		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.refresh == nil {
		e.refresh = e.refreshViaBackend
	}

	return e
}

// Store — хранилище токенов исполнителя.
func (e *Executor) Store() tokens.Store { return e.store }

// Execute выполняет запрос.
//
// Контракт:
//  1. текущий access-токен (если есть) прикладывается как Bearer;
//  2. тело ответа с Content-Type application/json сохраняется как JSON,
//     иное оборачивается в {"message": "<text>"};
//  3. 401 + code=TOKEN_EXPIRED — refresh, запись ОБОИХ токенов в хранилище,
//     затем ровно один повтор с новым access-токеном; повторный отказ
//     возвращается как есть;
//  4. неудачный refresh — хранилище очищается, ошибка ErrSessionExpired;
//  5. прочие ответы (включая 4xx/5xx) возвращаются без интерпретации.
//
// Ошибки:
//   - ErrTransport — сетевой сбой (повтора нет);
//   - ErrSessionExpired — см. п.4.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	const op = "client.Executor.Execute"

	payload, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.Anonymous {
		return e.do(ctx, req, payload, "")
	}

	access, _, err := e.store.Get(ctx, tokens.KeyAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: load access token: %w", op, err)
	}

	res, err := e.do(ctx, req, payload, access)
	if err != nil {
		return nil, err
	}

	if !res.TokenExpired() {
		return res, nil
	}

	log.From(ctx).Info("access_token_expired",
		slog.String("op", op),
		slog.String("path", req.Path),
	)

	fresh, err := e.refreshTokens(ctx)
	if err != nil {
		return nil, err
	}

	res, err = e.do(ctx, req, payload, fresh.AccessToken)
	if err != nil {
		return nil, err
	}

	res.Retried = true
	return res, nil
}

// refreshTokens обменивает сохранённый refresh-токен на новую пару и
// сохраняет её до возврата. Конкурентные вызовы с тем же refresh-токеном
// разделяют один обмен.
func (e *Executor) refreshTokens(ctx context.Context) (models.TokenPair, error) {
	const op = "client.Executor.refreshTokens"

	lg := log.From(ctx)

	current, ok, err := e.store.Get(ctx, tokens.KeyRefresh)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: load refresh token: %w", op, err)
	}

	if !ok || current == "" {
		return models.TokenPair{}, e.expire(ctx, errors.New("no refresh token stored"))
	}

	v, err, shared := e.refreshes.Do(current, func() (any, error) {
		pair, err := e.refresh(ctx, current)
		if err != nil {
			return nil, err
		}

		if pair.AccessToken == "" {
			return nil, errors.New("refresh response without access token")
		}

		if pair.RefreshToken == "" {
			pair.RefreshToken = current
		}

		if err := tokens.SavePair(ctx, e.store, pair); err != nil {
			return nil, err
		}

		return pair, nil
	})

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Отмена — не повод разлогинивать пользователя.
			return models.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
		}

		return models.TokenPair{}, e.expire(ctx, err)
	}

	e.metrics.refresh(refreshOK)
	lg.Info("token_refreshed",
		slog.String("op", op),
		slog.Bool("shared", shared),
	)

	return v.(models.TokenPair), nil
}

// expire очищает хранилище и возвращает ErrSessionExpired с причиной.
func (e *Executor) expire(ctx context.Context, cause error) error {
	const op = "client.Executor.expire"

	e.metrics.refresh(refreshFailed)
	log.From(ctx).Warn("token_refresh_failed",
		slog.String("op", op),
		slog.String("err", cause.Error()),
	)

	if err := e.store.Clear(ctx); err != nil {
		log.From(ctx).Error("token_store_clear_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return fmt.Errorf("%s: %w: %v", op, ErrSessionExpired, cause)
}

// refreshViaBackend — обмен по умолчанию: POST /auth/refresh {refreshToken}
// без Authorization и без логики повтора.
func (e *Executor) refreshViaBackend(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	const op = "client.Executor.refreshViaBackend"

	payload, err := encodeBody(models.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := e.do(ctx, Request{Method: http.MethodPost, Path: PathRefresh}, payload, "")
	if err != nil {
		return models.TokenPair{}, err
	}

	if !res.OK() {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, res.apiError())
	}

	var pair models.TokenPair
	if err := res.Decode(&pair); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// do выполняет один HTTP-обмен и читает ответ целиком.
func (e *Executor) do(ctx context.Context, req Request, payload []byte, access string) (*Result, error) {
	const op = "client.Executor.do"

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, e.url(req.Path), body)
	if err != nil {
		return nil, fmt.Errorf("%s: new_request: %w", op, err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", e.userAgent)

	rid := RequestIDFrom(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-Id", rid)

	if access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}

	lg := log.From(ctx)
	start := time.Now()

	resp, err := e.doer.Do(httpReq)
	if err != nil {
		e.metrics.request(method, req.Path, statusTransport)
		lg.Warn("http_error",
			slog.String("op", op),
			slog.String("method", method),
			slog.String("path", req.Path),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %s %s: %w: %w", op, method, req.Path, ErrTransport, err)
	}
	defer resp.Body.Close()

	res, err := readResult(resp)
	if err != nil {
		e.metrics.request(method, req.Path, statusTransport)
		return nil, fmt.Errorf("%s: %s %s: %w: %w", op, method, req.Path, ErrTransport, err)
	}

	e.metrics.request(method, req.Path, statusClass(res.StatusCode))
	lg.Debug("http",
		slog.String("method", method),
		slog.String("path", req.Path),
		slog.String("request_id", rid),
		slog.Int("status", res.StatusCode),
		slog.Duration("dur", time.Since(start)),
		slog.Bool("bearer", access != ""),
	)

	return res, nil
}

func (e *Executor) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return e.baseURL + path
}

func encodeBody(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	return b, nil
}
