// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/marisol/atelier/internal/auth"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// principalKey is the context key for the authenticated principal.
const principalKey ContextKey = "principal"

// TokenValidator validates a session token and yields the caller's principal.
type TokenValidator interface {
	PrincipalFromToken(tokenString string) (auth.Principal, error)
}

// SessionAuth validates end-user/admin JWT bearer tokens and attaches the
// resulting principal to the request context. Missing or malformed headers
// fail closed with 401; there is no unauthenticated fall-through.
func SessionAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := validator.PrincipalFromToken(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AgentAuth verifies the machine-to-machine shared-secret bearer token. The
// scheme must be exactly "Bearer <token>" with the full secret; comparison is
// exact-match, never prefix-based.
func AgentAuth(configuredToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := auth.VerifyAgentToken(r.Header.Get("Authorization"), configuredToken)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from the request context.
func GetPrincipal(r *http.Request) (auth.Principal, error) {
	principal, ok := r.Context().Value(principalKey).(auth.Principal)
	if !ok {
		return auth.Principal{}, fmt.Errorf("principal not found in request context")
	}
	return principal, nil
}

// WithPrincipal attaches a principal to a context. For tests.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
