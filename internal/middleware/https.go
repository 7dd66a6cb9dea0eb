// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"context"
	"net/http"

	"github.com/yanizio/brochure/internal/site"
	"github.com/yanizio/brochure/internal/tenant"
)

// SiteResolver maps a Host header to a Site.  *tenant.Resolver satisfies it.
type SiteResolver interface {
	Resolve(ctx context.Context, host string) (*site.Site, error)
}

// ForceHTTPS wraps h.  If the request is plain HTTP, the host is not
// "localhost", and the host is a configured site domain (not a fallback),
// the wrapper issues a 308 Permanent Redirect to the HTTPS version of the
// same URL.  Otherwise it calls the next handler unchanged.
func ForceHTTPS(res SiteResolver) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := tenant.NormalizeHost(r.Host)
			if isHTTPS(r) || host == "localhost" {
				h.ServeHTTP(w, r)
				return
			}

			// Resolution faults fall through; the tenant middleware reports them.
			if s, err := res.Resolve(r.Context(), r.Host); err == nil && s != nil && s.Domain == host {
				http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusPermanentRedirect)
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}
