package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp — момент времени в формате бэкенда.
//
// Бэкенд отдаёт ZonedDateTime (RFC 3339, иногда с суффиксом зоны "[Europe/Moscow]")
// и LocalDateTime без смещения; второй трактуется как UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp разбирает строку времени в любом из форматов бэкенда.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '['); i > 0 {
		s = s[:i]
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}

	return Timestamp{}, fmt.Errorf("unsupported time format %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}

	if s == "" {
		*t = Timestamp{}
		return nil
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(t.Format(time.RFC3339))
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return "-"
	}

	return t.Format("2006-01-02 15:04:05 -07:00")
}
