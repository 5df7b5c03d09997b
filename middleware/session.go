package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const SessionCookieName = "sid"

const sessionContextKey = contextKey("session")

// SessionID returns the snapshot slot id of the request
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey).(string)
	return id
}

// WithSessionID attaches id to ctx
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionContextKey, id)
}

// SessionMiddleware reads the sid cookie, issuing a fresh id when the
// cookie is missing or malformed
func SessionMiddleware(maxAge time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}
