// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

type ctxKey string

const userKey ctxKey = "user"

// AccessCookie is the cookie slot holding the access token.
const AccessCookie = "access"

// AccessValidator verifies an access token and resolves it to a user id.
type AccessValidator interface {
	ValidateAccess(token string) (string, error)
}

// Authenticate resolves the request identity from the access-token cookie.
//
// A missing cookie leaves the request anonymous. A present but invalid or
// expired token also leaves the request anonymous; whether anonymous access
// is acceptable is decided downstream, per route.
func Authenticate(validator AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := validator.ValidateAccess(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests with a 401 envelope. Routes behind
// it can assume GetUserIDFromContext returns a non-empty id.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserIDFromContext(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Authentication required",
				"errors":  map[string][]string{},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext extracts the authenticated user id from the request
// context. Returns an empty string if the request is anonymous.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WithUserID returns a context carrying the given user id. Intended for tests
// and internal request rewiring.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}
