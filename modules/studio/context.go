package studio

import (
	"context"
	"net/http"
)

type contextKey struct{ name string }

var userEmailKey = contextKey{"user_email"}

// userEmailHeader carries the verified user email, set by the identity
// provider's edge middleware before requests reach this service.
const userEmailHeader = "X-User-Email"

// requireUser rejects requests without a verified user identity and stores
// the email in the request context for handlers.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := r.Header.Get(userEmailHeader)
		if email == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), userEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserEmail returns the verified user email from the request context.
func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}
