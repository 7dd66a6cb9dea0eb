package tenant

import (
	"net/http"

	"github.com/yanizio/brochure/internal/logger"
)

// Middleware resolves the Site once per request and binds it to the
// request context.  Storage faults end the request with 500.
func Middleware(res *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := res.Resolve(r.Context(), r.Host)
			if err != nil {
				logger.FromContext(r.Context()).Errorw("site resolution failed",
					"host", r.Host, "err", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError),
					http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSite(r.Context(), s)))
		})
	}
}
