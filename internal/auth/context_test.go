package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBasic(t *testing.T) {
	var seen string
	h := Basic("test", "ops", "s3cret")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = Admin(r.Context())
	}))

	cases := []struct {
		name       string
		user, pass string
		set        bool
		want       int
	}{
		{"no header", "", "", false, http.StatusUnauthorized},
		{"wrong password", "ops", "nope", true, http.StatusUnauthorized},
		{"ok", "ops", "s3cret", true, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/admin/api/messages", nil)
			if tc.set {
				req.SetBasicAuth(tc.user, tc.pass)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.want == http.StatusOK && seen != "ops" {
				t.Fatalf("admin = %q", seen)
			}
		})
	}
}
