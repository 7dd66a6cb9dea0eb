// internal/content/scoped.go
//
// Per-site singletons: Company and SiteConfig.
//
// Context
// -------
// A site owns at most one Company and at most one SiteConfig.  Reads are
// scoped to the Site resolved for the request; a nil Site yields nil with
// no error so pages render their empty state.
//
// Writes enforce the singleton rule twice:
//
//  1. a pre-check inside the insert transaction returns
//     ErrSingletonViolation without touching the table, and
//  2. the UNIQUE key on site_id catches the concurrent-writer race, which
//     is mapped to the same error.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/yanizio/brochure/internal/site"
)

const mysqlDuplicateKey = 1062

const (
	companyCols = `id, site_id, name, slogan, description, mission, vision, core_values,
	               address, phone, primary_email, secondary_email, main_image, hero_image,
	               active, created_at, updated_at`
	siteConfigCols = `id, site_id, title, meta_description, keywords, footer_logo,
	                  background_image, footer_phone, footer_email, footer_address,
	                  social_links, active`
)

// Company returns the active company for s, lowest id first.
func (r *Repository) Company(ctx context.Context, s *site.Site) (*Company, error) {
	if s == nil {
		return nil, nil
	}
	const q = `SELECT ` + companyCols + `
	    FROM   company
	    WHERE  site_id = ? AND active = 1
	    ORDER  BY id
	    LIMIT  1`
	var c Company
	if err := r.db.GetContext(ctx, &c, q, s.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("company for site %d: %w", s.ID, err)
	}
	return &c, nil
}

// SiteConfig returns the active configuration for s, lowest id first.
func (r *Repository) SiteConfig(ctx context.Context, s *site.Site) (*SiteConfig, error) {
	if s == nil {
		return nil, nil
	}
	const q = `SELECT ` + siteConfigCols + `
	    FROM   site_config
	    WHERE  site_id = ? AND active = 1
	    ORDER  BY id
	    LIMIT  1`
	var c SiteConfig
	if err := r.db.GetContext(ctx, &c, q, s.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("site config for site %d: %w", s.ID, err)
	}
	return &c, nil
}

/*──────────────────────────── admin writes ────────────────────────────────*/

// CreateCompany inserts c and returns its id.
func (r *Repository) CreateCompany(ctx context.Context, c *Company) (uint64, error) {
	if err := r.check(c); err != nil {
		return 0, err
	}
	if err := checkImage(DirCompany, c.MainImage); err != nil {
		return 0, err
	}
	if err := checkImage(DirCompany, c.HeroImage); err != nil {
		return 0, err
	}
	const ins = `INSERT INTO company
	    (site_id, name, slogan, description, mission, vision, core_values, address,
	     phone, primary_email, secondary_email, main_image, hero_image, active)
	    VALUES (:site_id, :name, :slogan, :description, :mission, :vision, :core_values,
	     :address, :phone, :primary_email, :secondary_email, :main_image, :hero_image, :active)`
	return r.insertSingleton(ctx, "company", c.SiteID, ins, c)
}

// CreateSiteConfig inserts c and returns its id.
func (r *Repository) CreateSiteConfig(ctx context.Context, c *SiteConfig) (uint64, error) {
	if err := r.check(c); err != nil {
		return 0, err
	}
	if err := checkImage(DirConfig, c.FooterLogo); err != nil {
		return 0, err
	}
	if err := checkImage(DirConfig, c.BackgroundImage); err != nil {
		return 0, err
	}
	const ins = `INSERT INTO site_config
	    (site_id, title, meta_description, keywords, footer_logo, background_image,
	     footer_phone, footer_email, footer_address, social_links, active)
	    VALUES (:site_id, :title, :meta_description, :keywords, :footer_logo,
	     :background_image, :footer_phone, :footer_email, :footer_address,
	     :social_links, :active)`
	return r.insertSingleton(ctx, "site_config", c.SiteID, ins, c)
}

// insertSingleton runs the pre-check and insert in one transaction.  table
// is always one of two package constants.
func (r *Repository) insertSingleton(ctx context.Context, table string, siteID uint64, ins string, arg any) (uint64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s insert: %w", table, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table+` WHERE site_id = ?`, siteID); err != nil {
		return 0, fmt.Errorf("%s pre-check: %w", table, err)
	}
	if n > 0 {
		return 0, fmt.Errorf("%w: %s for site %d", ErrSingletonViolation, table, siteID)
	}

	res, err := tx.NamedExecContext(ctx, ins, arg)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateKey {
			return 0, fmt.Errorf("%w: %s for site %d", ErrSingletonViolation, table, siteID)
		}
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s id: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s insert: %w", table, err)
	}
	return uint64(id), nil
}

// AvailableSitesForCompany lists sites that do not yet have a company.
func (r *Repository) AvailableSitesForCompany(ctx context.Context) ([]site.Site, error) {
	return r.availableSites(ctx, "company")
}

// AvailableSitesForSiteConfig lists sites that do not yet have a config.
func (r *Repository) AvailableSitesForSiteConfig(ctx context.Context) ([]site.Site, error) {
	return r.availableSites(ctx, "site_config")
}

func (r *Repository) availableSites(ctx context.Context, table string) ([]site.Site, error) {
	q := `SELECT s.id, s.domain, s.name
	    FROM   site s
	    LEFT   JOIN ` + table + ` t ON t.site_id = s.id
	    WHERE  t.id IS NULL
	    ORDER  BY s.domain`
	var out []site.Site
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("available sites for %s: %w", table, err)
	}
	return out, nil
}

func (r *Repository) check(v any) error {
	if err := r.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, err.Error())
	}
	return nil
}
