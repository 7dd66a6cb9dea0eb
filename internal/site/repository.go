package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository reads site rows.  Every lookup returns (nil, nil) when no row
// matches so callers can walk their fallback chain without errors.Is noise.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps db.
func NewRepository(db *sqlx.DB) *Repository { return &Repository{db: db} }

// ByDomain matches domain case-insensitively.
func (r *Repository) ByDomain(ctx context.Context, domain string) (*Site, error) {
	const q = `
        SELECT id, domain, name
        FROM   site
        WHERE  LOWER(domain) = LOWER(?)
        ORDER  BY id
        LIMIT  1`
	return r.get(ctx, q, domain)
}

// ByID fetches one site by primary key.
func (r *Repository) ByID(ctx context.Context, id uint64) (*Site, error) {
	const q = `
        SELECT id, domain, name
        FROM   site
        WHERE  id = ?
        LIMIT  1`
	return r.get(ctx, q, id)
}

// First returns the lowest-id site.
func (r *Repository) First(ctx context.Context) (*Site, error) {
	const q = `
        SELECT id, domain, name
        FROM   site
        ORDER  BY id
        LIMIT  1`
	return r.get(ctx, q)
}

// All lists every site ordered by domain.  Used by the admin API.
func (r *Repository) All(ctx context.Context) ([]Site, error) {
	const q = `SELECT id, domain, name FROM site ORDER BY domain`
	var rows []Site
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return rows, nil
}

func (r *Repository) get(ctx context.Context, q string, args ...any) (*Site, error) {
	var s Site
	if err := r.db.GetContext(ctx, &s, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("site lookup: %w", err)
	}
	return &s, nil
}
