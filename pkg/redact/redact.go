// redact предоставляет утилиты безопасного редактирования чувствительных
// данных для логов (e-mail, токены). Цель — исключить утечки секретов,
// сохранив при этом полезный для отладки контекст (домен e-mail, факт
// наличия токена).
package redact

import "strings"

// Email маскирует e-mail для логирования.
//
// Правила:
//   - Строка должна содержать РОВНО один символ '@', иначе возвращается "***";
//   - Локальная часть заменяется на первые два символа (по рунам) + "***";
//   - Если длина локальной части ≤ 2 символов — возвращается "***@<domain>";
//   - Доменная часть возвращается без изменений.
//
// Примеры:
//
//	"foobar@example.com" -> "fo***@example.com"
//	"ab@ex.com"          -> "***@ex.com"
//	"no-at"              -> "***"
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token возвращает заглушку для непустого токена и "" для пустого:
// в логах видно, был ли токен, но не его значение.
func Token(s string) string {
	if s == "" {
		return ""
	}

	return "[REDACTED_TOKEN]"
}

// Authorization маскирует значение заголовка Authorization, сохраняя схему.
//
//	"Bearer abc.def" -> "Bearer [REDACTED_TOKEN]"
//	"abc"            -> "[REDACTED_TOKEN]"
func Authorization(h string) string {
	if h == "" {
		return ""
	}

	if scheme, _, ok := strings.Cut(h, " "); ok {
		return scheme + " " + Token("x")
	}

	return Token(h)
}
