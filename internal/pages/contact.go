// internal/pages/contact.go
//
// Contact page.
//
// Workflow
// --------
//  1. GET renders the form with a fresh CSRF token and any pending flash.
//  2. POST checks the token (403 on failure), then hands the fields and the
//     request metadata to the intake.
//  3. A *contact.ValidationError re-renders the form with field errors and
//     the visitor's input (422).  Nothing was stored.
//  4. Success redirects (303) to GET /contacto with a flash: `success`, or
//     `warning` when the message was stored but the email failed.
package pages

import (
	"errors"
	"net/http"

	"github.com/yanizio/brochure/internal/contact"
	"github.com/yanizio/brochure/internal/csrf"
	"github.com/yanizio/brochure/internal/logger"
	"github.com/yanizio/brochure/internal/requestinfo"
	"github.com/yanizio/brochure/internal/session"
)

// Flash texts shown after a submission.
const (
	FlashSent     = "¡Mensaje enviado correctamente! Nos pondremos en contacto contigo pronto."
	FlashDegraded = "El mensaje se guardó correctamente, pero hubo un problema al enviar el email."
)

// contactForm is the form state echoed back on validation errors.
type contactForm struct {
	Name, Email, Phone, Company, Subject, Message string
}

func (h *Handlers) contactForm(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, contactForm{}, nil)
}

func (h *Handlers) contactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if !h.tokens.Verify(r.PostForm.Get(csrf.FieldName)) {
		logger.FromContext(r.Context()).Infow("contact csrf rejected", "remote", r.RemoteAddr)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	form := contactForm{
		Name:    r.PostForm.Get("nombre"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("telefono"),
		Company: r.PostForm.Get("empresa"),
		Subject: r.PostForm.Get("asunto"),
		Message: r.PostForm.Get("mensaje"),
	}
	sub := contact.Submission{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Company: form.Company,
		Subject: form.Subject,
		Message: form.Message,
	}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		sub.RemoteIP = info.IP
		sub.UserAgent = info.UA.String()
		sub.Country = info.Country
	}

	out, err := h.contact.Submit(r.Context(), siteOf(r), sub)
	var ve *contact.ValidationError
	switch {
	case errors.As(err, &ve):
		h.renderContact(w, r, http.StatusUnprocessableEntity, form, ve.ByField())
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	flash := session.Flash{Kind: session.Success, Text: FlashSent}
	if out.Degraded() {
		flash = session.Flash{Kind: session.Warning, Text: FlashDegraded}
	}
	session.SetFlash(w, r, flash)
	http.Redirect(w, r, "/contacto", http.StatusSeeOther)
}

func (h *Handlers) renderContact(w http.ResponseWriter, r *http.Request, status int, form contactForm, errs map[string]string) {
	p, err := h.base(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tok, err := h.tokens.Token()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p.Data["Form"] = form
	p.Data["Errors"] = errs
	p.Data["CSRFField"] = csrf.FieldName
	p.Data["CSRFToken"] = tok
	h.render(w, r, status, "contacto", p)
}
