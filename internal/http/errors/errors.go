// errors стандартизирует ответы об ошибках веб-шлюза.
// На вход принимает ошибку контроллера страницы, на выход даёт
// HTTP-статус и краткий машиночитаемый код без утечки деталей.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/pages"
	"github.com/pribylovaa/ticket-booking-client/internal/validate"
)

// Нестандартный код "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrBadRequest — тело или параметры запроса к шлюзу не разобрались.
var ErrBadRequest = stderrors.New("bad request")

// APIError — единый формат ошибки для фронта.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку контроллера в HTTP-статус и ответ.
//
//   - nil — программная ошибка вызова: 500/internal;
//   - отмена клиентом — 499, дедлайн — 504 (раньше транспорта:
//     исполнитель оборачивает ими ошибку сети);
//   - validate.Errors и ErrBadRequest — 400/invalid_argument;
//   - нет токенов или сессия истекла — 401/unauthenticated;
//   - бэкенд недоступен — 502/unavailable;
//   - отказ бэкенда — по его статусу, 5xx — 502;
//   - прочее — 500/internal.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)
	return status, ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// WriteError пишет статус и тело, добавляя request_id из заголовка.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func classify(err error) (int, string, string) {
	var (
		verrs  validate.Errors
		apiErr *client.APIError
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case stderrors.As(err, &verrs), stderrors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, pages.ErrNotAuthenticated),
		stderrors.Is(err, client.ErrSessionExpired):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case stderrors.Is(err, client.ErrTransport):
		return http.StatusBadGateway, "unavailable", "backend unavailable"
	case stderrors.As(err, &apiErr):
		return fromBackend(apiErr.Status)
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

// fromBackend — маппинг статуса бэкенда.
func fromBackend(status int) (int, string, string) {
	switch {
	case status == http.StatusBadRequest:
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case status == http.StatusUnauthorized:
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case status == http.StatusForbidden:
		return http.StatusForbidden, "permission_denied", "permission denied"
	case status == http.StatusNotFound:
		return http.StatusNotFound, "not_found", "not found"
	case status == http.StatusConflict:
		return http.StatusConflict, "already_exists", "already exists"
	case status == http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "resource_exhausted", "resource exhausted"
	case status >= 400 && status < 500:
		return http.StatusBadRequest, "failed_precondition", "failed precondition"
	default:
		return http.StatusBadGateway, "unavailable", "backend error"
	}
}
