package client

import (
	"fmt"
	"strings"
)

// APIError — неуспешный (не 2xx) ответ бэкенда.
type APIError struct {
	Status   int
	Code     string
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("api error: status=%d code=%s", e.Status, e.Code)
	}

	return fmt.Sprintf("api error: status=%d code=%s: %s", e.Status, e.Code, strings.Join(e.Messages, "; "))
}

// Message склеивает сообщения сервера через перевод строки
// или возвращает fallback, если сервер их не прислал.
func (e *APIError) Message(fallback string) string {
	if len(e.Messages) == 0 {
		return fallback
	}

	return strings.Join(e.Messages, "\n")
}
