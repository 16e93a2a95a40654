package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const sessionCookieName = "coffee_session"

type ctxKey int

const sessionIDKey ctxKey = iota

// sessionCookie 没有会话 cookie 就发一个，把会话 ID 放进请求上下文
func sessionCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		// 会话 ID 会出现在文件路径里，必须是合法 UUID
		if c, err := r.Cookie(sessionCookieName); err == nil && uuid.Validate(c.Value) == nil {
			id = c.Value
		} else {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey, id)))
	})
}

func sessionID(r *http.Request) string {
	if id, ok := r.Context().Value(sessionIDKey).(string); ok {
		return id
	}
	return "default"
}
