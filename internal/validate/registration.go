package validate

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

const (
	MsgFirstname = "Длина имени должна быть от 2 до 25 символов"
	MsgLastname  = "Длина фамилии должна быть от 2 до 25 символов"
	MsgBirthDate = "Дата рождения должна быть в формате ГГГГ-ММ-ДД"
	MsgAge       = "Возраст должен быть от 14 до 100 лет"

	nameMinLen = 2
	nameMaxLen = 25
	minAge     = 14
	maxAge     = 100

	dateLayout = "2006-01-02"
)

// Registration проверяет форму регистрации: учётные данные (Credentials)
// плюс имя, фамилию и дату рождения. now задаёт «сегодня» для расчёта возраста.
func Registration(in models.RegisterRequest, now time.Time) Errors {
	errs := Credentials(in.Email, in.Password)

	if !nameOK(in.Firstname) {
		errs = append(errs, MsgFirstname)
	}

	if !nameOK(in.Lastname) {
		errs = append(errs, MsgLastname)
	}

	birth, err := time.Parse(dateLayout, strings.TrimSpace(in.BirthDate))
	if err != nil {
		return append(errs, MsgBirthDate)
	}

	if age := Age(birth, now); age < minAge || age > maxAge {
		errs = append(errs, MsgAge)
	}

	return errs
}

func nameOK(s string) bool {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	return n >= nameMinLen && n <= nameMaxLen
}

// Age — полное число лет между birth и now (по календарю, как Period.getYears).
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}

	return years
}
