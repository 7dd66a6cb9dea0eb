// internal/auth/context.go
//
// HTTP basic auth for the admin API.
//
// Usage
// -----
//
//	r.Use(auth.Basic("brochure-admin", cfg.Admin.User, cfg.Admin.Password))
//
//	// Downstream code retrieves the operator name for audit logs.
//	name, ok := auth.Admin(ctx)
//
// Notes
// -----
// • Credential checks are delegated to chi's BasicAuth, which compares in
//   constant time and answers 401 with a WWW-Authenticate challenge.
// • There is a single operator account.  Per-user roles are out of scope.

package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// adminKey is unexported to avoid context-key collisions.
type adminKey struct{}

// WithAdmin returns a new context carrying the authenticated operator.
func WithAdmin(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, adminKey{}, name)
}

// Admin extracts the operator name from ctx.
func Admin(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(adminKey{}).(string)
	return name, ok
}

// Basic rejects requests without the configured credentials and records the
// operator in the request context.
func Basic(realm, user, password string) func(http.Handler) http.Handler {
	check := middleware.BasicAuth(realm, map[string]string{user: password})
	return func(next http.Handler) http.Handler {
		return check(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, _, _ := r.BasicAuth()
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), name)))
		}))
	}
}
