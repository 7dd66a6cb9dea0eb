package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// ContactLimit caps form posts per client IP.  A zero limit disables it.
//
// The key is the peer address only.  Behind a trusted proxy, main mounts
// chi's RealIP first so the peer address is already the visitor's.
func ContactLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Demasiados envíos. Intente nuevamente en unos minutos.", http.StatusTooManyRequests)
		}),
	)
}
