package middleware

import (
	"context"
	"net/http"

	"gatekeeper/internal/application/token"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const subjectContextKey contextKey = "subject"

// AccessTokenHeader carries the short-lived access token on authenticated
// requests.
const AccessTokenHeader = "auth-token"

// RequireAccess returns middleware that verifies the access token header and
// sets the authenticated account id in the request context. Requests without
// a verifying token are rejected with 401.
func RequireAccess(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := tokens.Verify(token.KindAccess, r.Header.Get(AccessTokenHeader))
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubjectFromContext extracts the authenticated account id set by
// RequireAccess.
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectContextKey).(string)
	return subject, ok
}

// ContextWithSubject returns a context with the given account id set.
// Intended for use in tests.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}
