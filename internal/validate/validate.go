// validate — локальная проверка пользовательского ввода до сетевого вызова.
//
// Все функции чистые и детерминированные: без сети и побочных эффектов.
// Правила повторяют ограничения бэкенда, чтобы заведомо неверный ввод
// не уходил на сервер.
package validate

import "strings"

// Errors — список сообщений об ошибках валидации.
// Пустой список означает «ввод корректен».
type Errors []string

// Error склеивает сообщения через перевод строки — так их показывает форма.
func (e Errors) Error() string { return strings.Join(e, "\n") }

// Err возвращает nil для пустого списка и сам список иначе.
// Удобно для `if err := validate.X(...).Err(); err != nil`.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}

	return e
}
