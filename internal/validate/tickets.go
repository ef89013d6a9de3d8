package validate

import (
	"strings"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

const (
	MsgFrom      = "Укажите город отправления"
	MsgTo        = "Укажите город прибытия"
	MsgTransport = "Тип транспорта должен быть bus, avia или train"
	MsgPageSize  = "Размер страницы должен быть от 5 до 15"
	MsgPeriod    = "Начало периода должно быть раньше конца"
	MsgQuantity  = "Количество билетов должно быть не меньше 1"

	DefaultPageSize = 10
	minPageSize     = 5
	maxPageSize     = 15
)

// TicketSearch проверяет запрос поиска и нормализует его:
// обрезает пробелы в городах и подставляет размер страницы по умолчанию.
func TicketSearch(q models.TicketSearch) (models.TicketSearch, Errors) {
	var errs Errors

	q.From = strings.TrimSpace(q.From)
	q.To = strings.TrimSpace(q.To)

	if q.From == "" {
		errs = append(errs, MsgFrom)
	}

	if q.To == "" {
		errs = append(errs, MsgTo)
	}

	switch q.Type {
	case "", models.TransportBus, models.TransportAvia, models.TransportTrain:
	default:
		errs = append(errs, MsgTransport)
	}

	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}

	if q.PageSize < minPageSize || q.PageSize > maxPageSize {
		errs = append(errs, MsgPageSize)
	}

	if q.StartTime != nil && q.EndTime != nil && !q.StartTime.Before(q.EndTime.Time) {
		errs = append(errs, MsgPeriod)
	}

	return q, errs
}

// Quantity проверяет количество билетов в брони.
func Quantity(n int) error {
	if n < 1 {
		return Errors{MsgQuantity}
	}

	return nil
}
