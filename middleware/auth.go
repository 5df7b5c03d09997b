package middleware

import (
	"context"
	"encoding/json"
	"go-storefront/models"
	"go-storefront/utils"
	"net/http"
	"strings"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// ClaimsFromContext returns the claims attached by AuthMiddleware
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware verifies JWT tokens and attaches user information to the context
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header missing")
			return
		}

		tokenStr, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		claims, err := utils.ParseJWT(tokenStr, utils.PurposeAuth)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware attaches the claims of a valid token and lets
// guests through unchanged
func OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenStr, ok := bearerToken(r); ok {
			if claims, err := utils.ParseJWT(tokenStr, utils.PurposeAuth); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware ensures that the user has admin privileges
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || !claims.HasRole(models.RoleAdmin) {
			writeError(w, http.StatusForbidden, "Forbidden: Admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
