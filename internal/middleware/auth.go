package middleware

import (
	"net/http"
	"strings"

	"github.com/hongminglow/credit-approval/internal/http/respond"
)

// TokenVerifier validates a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth rejects requests without a valid bearer token. A nil verifier
// disables the check.
func Auth(verifier TokenVerifier, next http.Handler) http.Handler {
	if verifier == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := verifier.Verify(strings.TrimSpace(token)); err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
