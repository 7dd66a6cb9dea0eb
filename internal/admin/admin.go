// internal/admin/admin.go
//
// JSON API behind /admin/api.
//
// Context
// -------
// The admin screens are an external client; this package only exposes the
// operations they need that carry rules of their own:
//
//	POST  /{kind}/reorder               manual ordering (ordering.Handler)
//	GET   /companies/available-sites    sites without a Company
//	POST  /companies                    create the site's Company
//	GET   /site-configs/available-sites sites without a SiteConfig
//	POST  /site-configs                 create the site's SiteConfig
//	GET   /messages                     contact inbox, newest first
//	PATCH /messages/{id}                set read / replied
//
// A second Company or SiteConfig for a site answers 409 and persists
// nothing.  Authentication is applied by the caller.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/brochure/internal/auth"
	"github.com/yanizio/brochure/internal/contact"
	"github.com/yanizio/brochure/internal/content"
	"github.com/yanizio/brochure/internal/logger"
	"github.com/yanizio/brochure/internal/ordering"
	"github.com/yanizio/brochure/internal/site"
)

const maxBody = 1 << 20

// Singletons is the admin write surface of *content.Repository.
type Singletons interface {
	AvailableSitesForCompany(ctx context.Context) ([]site.Site, error)
	AvailableSitesForSiteConfig(ctx context.Context) ([]site.Site, error)
	CreateCompany(ctx context.Context, c *content.Company) (uint64, error)
	CreateSiteConfig(ctx context.Context, c *content.SiteConfig) (uint64, error)
}

// Messages is the admin surface of *contact.SQLStore.
type Messages interface {
	List(ctx context.Context, q contact.ListQuery) ([]contact.Message, error)
	Mark(ctx context.Context, id uint64, f contact.Flags) error
}

// API serves the admin endpoints.
type API struct {
	reorder    http.Handler
	singletons Singletons
	messages   Messages
}

// New wires the API.
func New(reorder ordering.Reorderer, s Singletons, m Messages) *API {
	return &API{reorder: ordering.NewHandler(reorder), singletons: s, messages: m}
}

// Routes mounts every endpoint on r.
func (a *API) Routes(r chi.Router) {
	r.Post("/{kind}/reorder", a.reorder.ServeHTTP)

	r.Get("/companies/available-sites", a.available(a.singletons.AvailableSitesForCompany))
	r.Post("/companies", a.createCompany)
	r.Get("/site-configs/available-sites", a.available(a.singletons.AvailableSitesForSiteConfig))
	r.Post("/site-configs", a.createSiteConfig)

	r.Get("/messages", a.listMessages)
	r.Patch("/messages/{id}", a.markMessage)
}

//
// singletons
//

func (a *API) available(list func(context.Context) ([]site.Site, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sites, err := list(r.Context())
		if err != nil {
			a.fail(w, r, err)
			return
		}
		if sites == nil {
			sites = []site.Site{}
		}
		writeJSON(w, http.StatusOK, sites)
	}
}

func (a *API) createCompany(w http.ResponseWriter, r *http.Request) {
	var c content.Company
	if !decode(w, r, &c) {
		return
	}
	id, err := a.singletons.CreateCompany(r.Context(), &c)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.audit(r, "company created", "id", id, "site_id", c.SiteID)
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (a *API) createSiteConfig(w http.ResponseWriter, r *http.Request) {
	var c content.SiteConfig
	if !decode(w, r, &c) {
		return
	}
	id, err := a.singletons.CreateSiteConfig(r.Context(), &c)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.audit(r, "site config created", "id", id, "site_id", c.SiteID)
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

//
// messages
//

func (a *API) listMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var lq contact.ListQuery
	var err error
	if lq.SiteID, err = uintParam(q.Get("site_id")); err != nil {
		writeError(w, http.StatusBadRequest, "site_id must be a positive integer")
		return
	}
	if lq.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if lq.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	lq.UnreadOnly, _ = strconv.ParseBool(q.Get("unread"))

	msgs, err := a.messages.List(r.Context(), lq)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []contact.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (a *API) markMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	var f contact.Flags
	if !decode(w, r, &f) {
		return
	}
	if f.Read == nil && f.Replied == nil {
		writeError(w, http.StatusBadRequest, "nothing to update: send read and/or replied")
		return
	}
	if err := a.messages.Mark(r.Context(), id, f); err != nil {
		a.fail(w, r, err)
		return
	}
	a.audit(r, "message marked", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

//
// helpers
//

// fail maps domain errors to status codes.  Anything unknown is a 500 with
// the detail kept in the log.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, content.ErrSingletonViolation):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, content.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contact.ErrNotFound):
		writeError(w, http.StatusNotFound, "message not found")
	default:
		logger.FromContext(r.Context()).Errorw("admin request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (a *API) audit(r *http.Request, msg string, kv ...any) {
	name, _ := auth.Admin(r.Context())
	logger.FromContext(r.Context()).Infow(msg, append(kv, "admin", name)...)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body: "+err.Error())
		return false
	}
	return true
}

func uintParam(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
