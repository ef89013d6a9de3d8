package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

// Result — ответ сервера после (возможного) повтора.
// Data — JSON тела либо {"message": "<text>"} для нетекстового JSON.
type Result struct {
	StatusCode int
	Header     http.Header
	Data       json.RawMessage
	// Retried — запрос был повторён после обновления токенов.
	Retried bool
}

// OK — статус 2xx.
func (r *Result) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Decode декодирует Data в v.
func (r *Result) Decode(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode response (status %d): %w", r.StatusCode, err)
	}

	return nil
}

// ErrorBody разбирает тело как ошибку бэкенда {code, message}.
// Тело другой формы даёт пустую структуру.
func (r *Result) ErrorBody() models.ErrorBody {
	var body models.ErrorBody
	if err := json.Unmarshal(r.Data, &body); err != nil {
		return models.ErrorBody{}
	}

	return body
}

// TokenExpired — ответ сигнализирует об истёкшем access-токене:
// статус 401 И code == "TOKEN_EXPIRED".
func (r *Result) TokenExpired() bool {
	return r.StatusCode == http.StatusUnauthorized && r.ErrorBody().Code == models.CodeTokenExpired
}

// Message — текстовое сообщение ответа: message из объекта или сама
// JSON-строка. Пустая строка, если сообщения нет.
func (r *Result) Message() string {
	var s string
	if err := json.Unmarshal(r.Data, &s); err == nil {
		return s
	}

	return strings.Join(r.ErrorBody().Messages, "\n")
}

func (r *Result) apiError() *APIError {
	body := r.ErrorBody()
	return &APIError{
		Status:   r.StatusCode,
		Code:     body.Code,
		Messages: body.Messages,
	}
}

// readResult читает тело ответа и нормализует его в JSON.
func readResult(resp *http.Response) (*Result, error) {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	data := json.RawMessage(b)
	if !isJSON(resp.Header.Get("Content-Type")) || !json.Valid(b) {
		wrapped, err := json.Marshal(map[string]string{"message": string(b)})
		if err != nil {
			return nil, fmt.Errorf("wrap text body: %w", err)
		}
		data = wrapped
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       data,
	}, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}
