package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetFlash(rec, httptest.NewRequest(http.MethodPost, "/contacto", nil),
		Flash{Kind: Warning, Text: "Mensaje recibido; el aviso por correo falló."})

	req := httptest.NewRequest(http.MethodGet, "/contacto", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec2 := httptest.NewRecorder()
	f, ok := PopFlash(rec2, req)
	if !ok || f.Kind != Warning || f.Text != "Mensaje recibido; el aviso por correo falló." {
		t.Fatalf("got %+v, %v", f, ok)
	}

	cleared := rec2.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", cleared)
	}
}

func TestPopFlashRejectsUnknownKind(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "error.aGk"})
	if _, ok := PopFlash(httptest.NewRecorder(), req); ok {
		t.Fatal("unknown kind accepted")
	}
}

func TestPopFlashMissing(t *testing.T) {
	if _, ok := PopFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("flash without cookie")
	}
}
