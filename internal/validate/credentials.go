package validate

import (
	"regexp"
	"unicode/utf8"
)

const (
	MsgPassword = "Пароль должен содержать от 8 до 20 символов, хотя бы одну букву, цифру и спецсимвол"
	MsgEmail    = "Некорректный email"

	passwordMinLen = 8
	passwordMaxLen = 20
)

// emailPart — непустая часть адреса без '@' и пробельных символов
// в смысле браузера: ASCII-пробелы, \v, Unicode-разделители (Z) и BOM.
const emailPart = `[^@\s\x{0B}\p{Z}\x{FEFF}]+`

var (
	reLetter  = regexp.MustCompile(`[a-zA-Z]`)
	reDigit   = regexp.MustCompile(`\d`)
	reSpecial = regexp.MustCompile(`[!@#$%^&*]`)
	reEmail   = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)
)

// Credentials проверяет e-mail и пароль.
//
// Правила независимы, проверяются все, сообщения всех нарушенных правил
// возвращаются в порядке: пароль, e-mail.
//   - пароль: 8–20 символов, хотя бы одна латинская буква, цифра и один из !@#$%^&*;
//   - e-mail: local@domain.tld без пробелов и без '@' в частях.
func Credentials(email, password string) Errors {
	var errs Errors

	if !Password(password) {
		errs = append(errs, MsgPassword)
	}

	if !Email(email) {
		errs = append(errs, MsgEmail)
	}

	return errs
}

// Password сообщает, удовлетворяет ли пароль политике сложности.
// Длина считается в символах (рунах), а не в байтах.
func Password(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < passwordMinLen || n > passwordMaxLen {
		return false
	}

	return reLetter.MatchString(password) &&
		reDigit.MatchString(password) &&
		reSpecial.MatchString(password)
}

// Email сообщает, имеет ли строка форму local@domain.tld.
func Email(email string) bool {
	return reEmail.MatchString(email)
}
