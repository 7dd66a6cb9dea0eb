package ordering

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type fakeReorderer struct {
	calls [][]Item
	scope Scope
	err   error
}

func (f *fakeReorderer) Reorder(_ context.Context, _ Kind, items []Item, scope Scope) (int, error) {
	f.calls = append(f.calls, items)
	f.scope = scope
	if f.err != nil {
		return 0, f.err
	}
	seen := map[uint64]bool{}
	for _, it := range items {
		seen[it.ID] = true
	}
	return len(seen), nil
}

func serve(t *testing.T, f *fakeReorderer, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/{kind}/reorder", NewHandler(f).ServeHTTP)

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerPrimaryJSON(t *testing.T) {
	f := &fakeReorderer{}
	rec := serve(t, f, "/services/reorder", "application/json",
		`{"items":[{"id":1,"position":0},{"id":2,"position":1}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["updated"] != 2 {
		t.Fatalf("updated = %d", resp["updated"])
	}
}

func TestHandlerFallbackFormBody(t *testing.T) {
	f := &fakeReorderer{}
	form := url.Values{"payload": {`[{"id":3,"position":0},{"id":3,"position":4}]`}}
	rec := serve(t, f, "/team/reorder?partner=true", "application/x-www-form-urlencoded", form.Encode())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if got := rec.Body.String(); got != "updated 1" {
		t.Fatalf("body = %q", got)
	}
	if f.scope.Partner == nil || !*f.scope.Partner {
		t.Fatal("scope not forwarded")
	}
}

func TestHandlerFallbackQueryString(t *testing.T) {
	f := &fakeReorderer{}
	q := url.Values{"payload": {`[{"id":9,"position":2}]`}}
	rec := serve(t, f, "/clients/reorder?"+q.Encode(), "", "")

	if rec.Code != http.StatusOK || rec.Body.String() != "updated 1" {
		t.Fatalf("status = %d body=%q", rec.Code, rec.Body)
	}
}

func TestHandlerMalformedFallbackReturnsOriginalError(t *testing.T) {
	f := &fakeReorderer{}
	form := url.Values{"payload": {`[{"id":1,"position":`}}
	rec := serve(t, f, "/projects/reorder", "application/x-www-form-urlencoded", form.Encode())

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(f.calls) != 0 {
		t.Fatal("storage touched on malformed fallback")
	}

	// The body must be the primary parse error, byte for byte.
	_, perr := DecodeJSON([]byte(form.Encode()))
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != perr.Error() {
		t.Fatalf("error = %q, want %q", resp["error"], perr.Error())
	}
}

func TestHandlerMissingFallback(t *testing.T) {
	f := &fakeReorderer{}
	rec := serve(t, f, "/services/reorder", "text/plain", "not json")
	if rec.Code != http.StatusBadRequest || len(f.calls) != 0 {
		t.Fatalf("status = %d calls = %d", rec.Code, len(f.calls))
	}
}

func TestHandlerNegativePosition(t *testing.T) {
	f := &fakeReorderer{}
	rec := serve(t, f, "/services/reorder", "application/json", `{"items":[{"id":1,"position":-2}]}`)
	if rec.Code != http.StatusBadRequest || len(f.calls) != 0 {
		t.Fatalf("status = %d calls = %d", rec.Code, len(f.calls))
	}
}

func TestHandlerUnknownKind(t *testing.T) {
	rec := serve(t, &fakeReorderer{}, "/widgets/reorder", "application/json", `{"items":[]}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandlerStorageError(t *testing.T) {
	f := &fakeReorderer{err: errors.New("deadlock")}
	rec := serve(t, f, "/services/reorder", "application/json", `{"items":[{"id":1,"position":0}]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "deadlock") {
		t.Fatal("storage detail leaked to client")
	}
}
