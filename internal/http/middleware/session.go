package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieSession — cookie с идентификатором браузерной сессии.
const CookieSession = "sid"

type sessionKey struct{}

// Session гарантирует cookie sid с uuid и кладёт его в контекст.
// Невалидное значение заменяется новым: чужой формат не должен
// становиться ключом хранилища токенов.
func Session(maxAge time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if c, err := r.Cookie(CookieSession); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					sid = id.String()
				}
			}

			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieSession,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(maxAge / time.Second),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID — id сессии из контекста; "" вне мидлвара Session.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey{}).(string)
	return sid
}
