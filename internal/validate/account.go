package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

const (
	MsgAmount        = "Введите корректную сумму для пополнения."
	MsgDepositStatus = "Статус должен быть completed или failed"
	MsgOldPassword   = "Старый пароль указан в неверном формате"
	MsgNewPassword   = MsgPassword
)

// Amount разбирает сумму пополнения: строго положительное целое число
// без дробной части и посторонних символов.
func Amount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, Errors{MsgAmount}
	}

	return n, nil
}

// DepositStatus допускает только конечные статусы, в которые клиент
// может перевести депозит: completed и failed.
func DepositStatus(s string) (models.DepositStatus, error) {
	switch st := models.DepositStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case models.DepositCompleted, models.DepositFailed:
		return st, nil
	default:
		return "", Errors{MsgDepositStatus}
	}
}

// ChangePassword проверяет оба пароля по общей политике сложности.
func ChangePassword(oldPassword, newPassword string) Errors {
	var errs Errors

	if !Password(oldPassword) {
		errs = append(errs, MsgOldPassword)
	}

	if !Password(newPassword) {
		errs = append(errs, MsgNewPassword)
	}

	return errs
}

// ID разбирает положительный числовой идентификатор сущности.
func ID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, Errors{fmt.Sprintf("Некорректный идентификатор: %s", what)}
	}

	return id, nil
}
