package models

import (
	"encoding/json"
	"fmt"
)

// CodeTokenExpired — код ошибки бэкенда: access-токен истёк и его нужно обновить.
const CodeTokenExpired = "TOKEN_EXPIRED"

// ErrorBody — формат ошибок бэкенда: { code, message, timestamp }.
// message приходит либо строкой, либо массивом строк (ошибки валидации);
// оба варианта декодируются в Messages.
type ErrorBody struct {
	Code      string   `json:"code,omitempty"`
	Messages  Messages `json:"message,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// Messages — message из тела ошибки: строка или массив строк.
type Messages []string

func (m *Messages) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*m = nil
			return nil
		}

		*m = Messages{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("message: expected string or array of strings: %w", err)
	}

	*m = many
	return nil
}

// MarshalJSON пишет одиночное сообщение строкой, несколько — массивом.
func (m Messages) MarshalJSON() ([]byte, error) {
	if len(m) == 1 {
		return json.Marshal(m[0])
	}

	return json.Marshal([]string(m))
}
