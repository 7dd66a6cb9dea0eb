// internal/pages/pages.go
//
// Public brochure pages.
//
// Context
// -------
// Every page renders the site's Company and SiteConfig in the shared layout
// (header, footer, head tags) plus its own list.  Catalog lists are shared
// by every site; only the two singletons are per site.  A host with no site
// at all still renders, with empty company and config.
//
// Routes
// ------
//	GET  /                home: company, services, featured projects,
//	                      homepage clients, partners
//	GET  /servicios       all services
//	GET  /proyectos       all projects
//	GET  /clientes        direct, final, and featured clients
//	GET  /equipo          all team members
//	GET  /sobre-nosotros  company plus partners
//	GET  /contacto        form
//	POST /contacto        see contact.go
package pages

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/brochure/internal/contact"
	"github.com/yanizio/brochure/internal/content"
	"github.com/yanizio/brochure/internal/head"
	"github.com/yanizio/brochure/internal/logger"
	"github.com/yanizio/brochure/internal/session"
	"github.com/yanizio/brochure/internal/site"
	"github.com/yanizio/brochure/internal/tenant"
)

// Homepage list sizes.
const (
	homeServices = 6
	homeProjects = 3
	homePartners = 4
)

// Renderer executes a named page for a site.  *view.Engine satisfies it.
type Renderer interface {
	Render(w http.ResponseWriter, status int, s *site.Site, page string, data any) error
}

// Content is the read surface of *content.Repository used by the pages.
type Content interface {
	Company(ctx context.Context, s *site.Site) (*content.Company, error)
	SiteConfig(ctx context.Context, s *site.Site) (*content.SiteConfig, error)
	Services(ctx context.Context, q content.ServiceQuery) ([]content.Service, error)
	Projects(ctx context.Context, q content.ProjectQuery) ([]content.Project, error)
	Clients(ctx context.Context, q content.ClientQuery) ([]content.Client, error)
	HomepageClients(ctx context.Context) ([]content.Client, error)
	Team(ctx context.Context, q content.TeamQuery) ([]content.TeamMember, error)
}

// ContactSubmitter accepts contact form input.  *contact.Intake satisfies it.
type ContactSubmitter interface {
	Submit(ctx context.Context, s *site.Site, sub contact.Submission) (contact.Outcome, error)
}

// Tokens issues and checks CSRF tokens.  *csrf.Signer satisfies it.
type Tokens interface {
	Token() (string, error)
	Verify(tok string) bool
}

// Handlers serves the public pages.
type Handlers struct {
	view    Renderer
	content Content
	contact ContactSubmitter
	tokens  Tokens
}

// New wires the page handlers.
func New(view Renderer, c Content, sub ContactSubmitter, tokens Tokens) *Handlers {
	return &Handlers{view: view, content: c, contact: sub, tokens: tokens}
}

// Routes mounts every public page on r.  contactMW wraps POST /contacto
// only (rate limiting).
func (h *Handlers) Routes(r chi.Router, contactMW ...func(http.Handler) http.Handler) {
	r.Get("/", h.page("home", h.homeData))
	r.Get("/servicios", h.page("servicios", h.servicesData))
	r.Get("/proyectos", h.page("proyectos", h.projectsData))
	r.Get("/clientes", h.page("clientes", h.clientsData))
	r.Get("/equipo", h.page("equipo", h.teamData))
	r.Get("/sobre-nosotros", h.page("sobre-nosotros", h.aboutData))
	r.Get("/contacto", h.contactForm)
	r.With(contactMW...).Post("/contacto", h.contactSubmit)
}

//
// page data
//

// Page is the value every template receives.
type Page struct {
	Site    *site.Site
	Company *content.Company
	Config  *content.SiteConfig
	Head    *head.Builder
	Flash   *session.Flash
	Path    string
	Data    map[string]any
}

// base loads the per-site singletons and seeds the head.
func (h *Handlers) base(w http.ResponseWriter, r *http.Request) (*Page, error) {
	ctx := r.Context()
	s := siteOf(r)

	company, err := h.content.Company(ctx, s)
	if err != nil {
		return nil, err
	}
	cfg, err := h.content.SiteConfig(ctx, s)
	if err != nil {
		return nil, err
	}

	p := &Page{
		Site:    s,
		Company: company,
		Config:  cfg,
		Head:    head.New(),
		Path:    r.URL.Path,
		Data:    map[string]any{},
	}
	if f, ok := session.PopFlash(w, r); ok {
		p.Flash = &f
	}

	switch {
	case cfg != nil && cfg.Title != "":
		p.Head.SetTitle(cfg.Title)
	case company != nil:
		p.Head.SetTitle(company.Name)
	}
	if cfg != nil {
		p.Head.Meta("description", cfg.MetaDescription)
		p.Head.Meta("keywords", cfg.Keywords)
	}
	if company != nil {
		_ = p.Head.JSONLD(organization(company))
	}
	return p, nil
}

func siteOf(r *http.Request) *site.Site { return tenant.FromContext(r.Context()) }

func organization(c *content.Company) map[string]any {
	org := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     c.Name,
		"email":    c.PrimaryEmail,
	}
	if c.Phone != "" {
		org["telephone"] = c.Phone
	}
	if c.Address != "" {
		org["address"] = c.Address
	}
	return org
}

// render sends page with status, logging template faults.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, p *Page) {
	if err := h.view.Render(w, status, p.Site, page, p); err != nil {
		h.fail(w, r, err)
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Errorw("page failed", "path", r.URL.Path, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// page loads base data, runs fill, and renders name.
func (h *Handlers) page(name string, fill func(ctx context.Context, p *Page) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.base(w, r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if fill != nil {
			if err := fill(r.Context(), p); err != nil {
				h.fail(w, r, err)
				return
			}
		}
		h.render(w, r, http.StatusOK, name, p)
	}
}

//
// page fillers
//

func (h *Handlers) homeData(ctx context.Context, p *Page) error {
	services, err := h.content.Services(ctx, content.ServiceQuery{Limit: homeServices})
	if err != nil {
		return err
	}
	projects, err := h.content.Projects(ctx, content.ProjectQuery{FeaturedOnly: true, Limit: homeProjects})
	if err != nil {
		return err
	}
	clients, err := h.content.HomepageClients(ctx)
	if err != nil {
		return err
	}
	partners, err := h.content.Team(ctx, content.TeamQuery{PartnersOnly: true, Limit: homePartners})
	if err != nil {
		return err
	}
	p.Data["Services"] = services
	p.Data["Projects"] = projects
	p.Data["Clients"] = clients
	p.Data["Team"] = partners
	return nil
}

func (h *Handlers) servicesData(ctx context.Context, p *Page) error {
	services, err := h.content.Services(ctx, content.ServiceQuery{})
	p.Data["Services"] = services
	return err
}

func (h *Handlers) projectsData(ctx context.Context, p *Page) error {
	projects, err := h.content.Projects(ctx, content.ProjectQuery{})
	p.Data["Projects"] = projects
	return err
}

func (h *Handlers) clientsData(ctx context.Context, p *Page) error {
	direct, err := h.content.Clients(ctx, content.ClientQuery{Type: content.ClientDirect})
	if err != nil {
		return err
	}
	final, err := h.content.Clients(ctx, content.ClientQuery{Type: content.ClientFinal})
	if err != nil {
		return err
	}
	featured, err := h.content.Clients(ctx, content.ClientQuery{FeaturedOnly: true})
	if err != nil {
		return err
	}
	p.Data["Direct"] = direct
	p.Data["Final"] = final
	p.Data["Featured"] = featured
	return nil
}

func (h *Handlers) teamData(ctx context.Context, p *Page) error {
	team, err := h.content.Team(ctx, content.TeamQuery{})
	p.Data["Team"] = team
	return err
}

func (h *Handlers) aboutData(ctx context.Context, p *Page) error {
	partners, err := h.content.Team(ctx, content.TeamQuery{PartnersOnly: true})
	p.Data["Team"] = partners
	return err
}
