// internal/ordering/handler.go
//
// HTTP surface for POST /admin/api/{kind}/reorder.
//
// Context
// -------
// The primary protocol is a JSON body:
//
//	{"items":[{"id":1,"position":0},{"id":7,"position":1}]}
//
// answered with {"updated":N}.  Older admin list screens post a classic form
// instead, carrying the same list as JSON text in a `payload` field (body or
// query string).  When the primary parse fails with ErrBadPayload, the
// handler retries with that field and answers in plain text "updated N".
// If the fallback is absent or malformed too, the client receives the
// original error unchanged and nothing is written.
package ordering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/brochure/internal/logger"
	"github.com/yanizio/brochure/internal/metrics"
)

// MaxBody caps the reorder request body.
const MaxBody = 1 << 20

// Reorderer is the service surface the handler needs.
type Reorderer interface {
	Reorder(ctx context.Context, kind Kind, items []Item, scope Scope) (int, error)
}

// Handler serves reorder requests.  The {kind} URL parameter selects the
// list.
type Handler struct {
	svc Reorderer
}

// NewHandler wraps svc.
func NewHandler(svc Reorderer) *Handler { return &Handler{svc: svc} }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}
	scope, err := ParseScope(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBody+1))
	if err != nil || len(body) > MaxBody {
		writeJSONError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
		return
	}

	items, perr := DecodeJSON(body)
	if perr == nil {
		n, err := h.svc.Reorder(r.Context(), kind, items, scope)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		metrics.ReorderUpdatesTotal.WithLabelValues(string(kind), "json").Add(float64(n))
		writeJSON(w, http.StatusOK, map[string]int{"updated": n})
		return
	}

	// Fallback protocol.  Any failure here reports perr, not its own error.
	raw := fallbackPayload(body, r.URL.Query())
	items, ferr := DecodeFallback(raw)
	if ferr != nil {
		logger.FromContext(r.Context()).Debugw("reorder fallback rejected", "kind", kind, "err", ferr)
		writeJSONError(w, http.StatusBadRequest, perr)
		return
	}
	n, err := h.svc.Reorder(r.Context(), kind, items, scope)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.ReorderUpdatesTotal.WithLabelValues(string(kind), "fallback").Add(float64(n))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "updated %d", n)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBadPayload), errors.Is(err, ErrScope):
		writeJSONError(w, http.StatusBadRequest, err)
	case errors.Is(err, ErrUnknownKind):
		writeJSONError(w, http.StatusNotFound, err)
	default:
		logger.FromContext(r.Context()).Errorw("reorder failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

/*──────────────────────────── decoding ────────────────────────────────────*/

// DecodeJSON parses the primary {"items":[…]} body.
func DecodeJSON(body []byte) ([]Item, error) {
	var req struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if req.Items == nil {
		return nil, fmt.Errorf("%w: missing items", ErrBadPayload)
	}
	if err := checkItems(req.Items); err != nil {
		return nil, err
	}
	return req.Items, nil
}

// DecodeFallback parses the payload field: a bare JSON list of items.
func DecodeFallback(raw string) ([]Item, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: payload missing", ErrBadPayload)
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if err := checkItems(items); err != nil {
		return nil, err
	}
	return items, nil
}

// fallbackPayload prefers the form-encoded body over the query string.
func fallbackPayload(body []byte, q url.Values) string {
	// ParseQuery keeps every pair it could decode, so a partial error still
	// yields usable values.
	form, _ := url.ParseQuery(string(body))
	if p := form.Get("payload"); p != "" {
		return p
	}
	return q.Get("payload")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
