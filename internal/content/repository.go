// internal/content/repository.go
//
// Ordered catalog queries.
//
// Context
// -------
// Every public list is read through this file.  Queries always filter on
// `active = 1` and always end with a deterministic ORDER BY so two renders
// of the same data produce the same page:
//
//   - services, clients, team:  sort_order, name, id
//   - projects:                 sort_order, created_at DESC, id DESC
//
// Filters are appended as fixed SQL fragments.  No caller-supplied text is
// ever concatenated into a statement; values travel as placeholders.
package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
)

// Repository reads and writes brochure content.
type Repository struct {
	db       *sqlx.DB
	validate *validator.Validate
}

// NewRepository wraps db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, validate: validator.New()}
}

// ServiceQuery narrows Services.
type ServiceQuery struct {
	Limit int
}

// ProjectQuery narrows Projects.
type ProjectQuery struct {
	FeaturedOnly bool
	Limit        int
}

// ClientQuery narrows Clients.  A zero Type means both types.
type ClientQuery struct {
	Type         ClientType
	FeaturedOnly bool
	WithLogo     bool
}

// TeamQuery narrows Team.
type TeamQuery struct {
	PartnersOnly bool
	Limit        int
}

const (
	serviceCols = `id, name, description, icon, image, sort_order, active, created_at`
	clientCols  = `id, name, logo, description, type, featured, sort_order, highlights, active, created_at`
	teamCols    = `id, name, role, email, phone, photo, description, partner, sort_order, active, created_at`
	projectCols = `p.id, p.name, p.description, p.client, p.client_id, c.name AS client_name,
	               p.scope, p.image, p.start_date, p.end_date, p.sort_order, p.featured,
	               p.active, p.created_at`
)

// Services lists active services.
func (r *Repository) Services(ctx context.Context, q ServiceQuery) ([]Service, error) {
	var b query
	b.from(`SELECT ` + serviceCols + ` FROM service`)
	b.where("active = 1")
	b.order("sort_order, name, id")
	b.limit(q.Limit)

	stmt, args := b.build()
	var out []Service
	if err := r.db.SelectContext(ctx, &out, stmt, args...); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return out, nil
}

// Projects lists active projects with the related client name joined.
func (r *Repository) Projects(ctx context.Context, q ProjectQuery) ([]Project, error) {
	var b query
	b.from(`SELECT ` + projectCols + ` FROM project p LEFT JOIN client c ON c.id = p.client_id`)
	b.where("p.active = 1")
	if q.FeaturedOnly {
		b.where("p.featured = 1")
	}
	b.order("p.sort_order, p.created_at DESC, p.id DESC")
	b.limit(q.Limit)

	stmt, args := b.build()
	var out []Project
	if err := r.db.SelectContext(ctx, &out, stmt, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Clients lists active clients.
func (r *Repository) Clients(ctx context.Context, q ClientQuery) ([]Client, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, ErrClientType)
	}

	var b query
	b.from(`SELECT ` + clientCols + ` FROM client`)
	b.where("active = 1")
	if q.Type != "" {
		b.where("type = ?", string(q.Type))
	}
	if q.FeaturedOnly {
		b.where("featured = 1")
	}
	if q.WithLogo {
		b.where("logo IS NOT NULL AND logo <> ''")
	}
	b.order("sort_order, name, id")

	stmt, args := b.build()
	var out []Client
	if err := r.db.SelectContext(ctx, &out, stmt, args...); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return out, nil
}

// HomepageClients prefers featured clients with a logo and degrades to any
// active client with a logo when none are featured.
func (r *Repository) HomepageClients(ctx context.Context) ([]Client, error) {
	out, err := r.Clients(ctx, ClientQuery{FeaturedOnly: true, WithLogo: true})
	if err != nil || len(out) > 0 {
		return out, err
	}
	return r.Clients(ctx, ClientQuery{WithLogo: true})
}

// Team lists active team members.
func (r *Repository) Team(ctx context.Context, q TeamQuery) ([]TeamMember, error) {
	var b query
	b.from(`SELECT ` + teamCols + ` FROM team_member`)
	b.where("active = 1")
	if q.PartnersOnly {
		b.where("partner = 1")
	}
	b.order("sort_order, name, id")
	b.limit(q.Limit)

	stmt, args := b.build()
	var out []TeamMember
	if err := r.db.SelectContext(ctx, &out, stmt, args...); err != nil {
		return nil, fmt.Errorf("list team: %w", err)
	}
	return out, nil
}

/*──────────────────────────── query builder ───────────────────────────────*/

// query assembles SELECT statements from fixed fragments.
type query struct {
	base    string
	conds   []string
	orderBy string
	lim     int
	args    []any
}

func (q *query) from(s string) { q.base = s }

func (q *query) where(cond string, args ...any) {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, args...)
}

func (q *query) order(s string) { q.orderBy = s }

func (q *query) limit(n int) { q.lim = n }

func (q *query) build() (string, []any) {
	args := append([]any(nil), q.args...)
	var sb strings.Builder
	sb.WriteString(q.base)
	if len(q.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.conds, " AND "))
	}
	if q.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.orderBy)
	}
	if q.lim > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.lim)
	}
	return sb.String(), args
}
