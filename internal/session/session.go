// internal/session/session.go
//
// One-shot flash notices carried in a short-lived cookie.
//
// Context
//   After a POST the handler redirects (303) and the next GET shows a notice
//   such as "message sent" or "message stored, email delayed".  No server-side
//   session exists, so the notice rides in a cookie that the next render
//   reads and clears.
//
//   The cookie value is `<kind>.<base64url(text)>`.  Only the two known kinds
//   are accepted on read; anything else is dropped silently.  Text is
//   escaped by html/template at render time, so an edited cookie can at
//   worst change its own owner's notice.
//
//------------------------------------------------------------------------------

package session

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const (
	cookieName = "brochure_flash"
	flashTTL   = 5 * time.Minute
)

// Kind classifies a flash notice.
type Kind string

const (
	Success Kind = "success"
	Warning Kind = "warning"
)

// Flash is one notice.
type Flash struct {
	Kind Kind
	Text string
}

// SetFlash stores f for the next request.
func SetFlash(w http.ResponseWriter, r *http.Request, f Flash) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    string(f.Kind) + "." + base64.RawURLEncoding.EncodeToString([]byte(f.Text)),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flashTTL / time.Second),
	})
}

// PopFlash returns the pending notice, if any, and clears the cookie.
func PopFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return Flash{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	kind, enc, ok := strings.Cut(c.Value, ".")
	if !ok {
		return Flash{}, false
	}
	k := Kind(kind)
	if k != Success && k != Warning {
		return Flash{}, false
	}
	text, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return Flash{}, false
	}
	return Flash{Kind: k, Text: string(text)}, true
}
