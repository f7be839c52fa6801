package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/evencat/server/internal/api/problem"
	"github.com/evencat/server/internal/auth"
)

type contextKeyAuth string

const claimsKey contextKeyAuth = "sessionClaims"

// Auth gates identity-scoped routes. A missing credential is reported
// as 401. Any presented credential that fails (wrong scheme, malformed,
// bad signature, expired) is 403. On success the resolved claims are
// attached to the request context.
//
// Only identity is resolved here; per-resource ownership is not
// checked anywhere downstream either (see events handlers).
func Auth(tokens *auth.TokenIssuer, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "No token provided", problem.ErrUnauthorized, env)
				return
			}

			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "No token provided", problem.ErrUnauthorized, env)
				return
			}

			token, err := auth.TokenFromHeader(authHeader)
			if err != nil {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Invalid token", err, env)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Invalid token", err, env)
				return
			}

			ctx := contextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Claims returns the session claims attached by Auth, or nil when the
// request did not pass through it.
func Claims(r *http.Request) *auth.Claims {
	if r == nil {
		return nil
	}
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
