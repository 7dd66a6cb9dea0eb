//
//  internal/requestinfo/requestinfo.go
//
//  Per-request client metadata: IP, user-agent summary, and country.
//  Contact messages store these fields so admins can triage spam.  The
//  struct is inert and safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing, via internal/ua)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"net"
	"net/http"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/yanizio/brochure/internal/ua"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// Info is attached to the request context by Enricher.Middleware.
type Info struct {
	IP      string  // Peer address, rewritten by chi RealIP behind a trusted proxy
	UA      ua.Info // Parsed User-Agent
	Country string  // ISO code, empty without a GeoIP database
}

//
//  -----------------------------
//  Enricher
//  -----------------------------
//

// Enricher owns the optional GeoLite2 reader.  The reader is safe for
// concurrent reads, which is all we ever perform.
type Enricher struct {
	geo *geoip2.Reader
}

// NewEnricher opens the GeoLite2 Country or City database at dbPath.  An
// empty path disables country lookups.
func NewEnricher(dbPath string) (*Enricher, error) {
	if dbPath == "" {
		return &Enricher{}, nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Enricher{geo: r}, nil
}

// Close releases the GeoIP reader.
func (e *Enricher) Close() error {
	if e.geo == nil {
		return nil
	}
	return e.geo.Close()
}

// Middleware attaches *Info and forwards.
func (e *Enricher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := e.Collect(r)
		zap.S().Debugw("request info",
			"ip", info.IP,
			"country", info.Country,
			"browser", info.UA.Browser,
			"device", info.UA.Device,
			"bot", info.UA.IsBot,
			"path", r.URL.Path,
		)
		next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
	})
}

// Collect builds Info for r without touching its context.
func (e *Enricher) Collect(r *http.Request) *Info {
	ip := clientIP(r)
	info := &Info{
		UA:      ua.Parse(r.UserAgent()),
		Country: e.country(ip),
	}
	if ip != nil {
		info.IP = ip.String()
	}
	return info
}

func (e *Enricher) country(ip net.IP) string {
	if e.geo == nil || ip == nil {
		return ""
	}
	rec, err := e.geo.Country(ip)
	if err != nil {
		return ""
	}
	return rec.Country.IsoCode
}

//
//  -----------------------------
//  Context helpers
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// WithInfo stores info in ctx.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the pointer stored by the middleware, or nil.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// clientIP parses r.RemoteAddr ("ip:port").  Forwarding headers are not
// read here; main installs chi's RealIP only when a trusted proxy sits in
// front, so a visitor cannot choose the address stored with a message.
func clientIP(r *http.Request) net.IP {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
