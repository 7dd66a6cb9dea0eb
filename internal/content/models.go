// internal/content/models.go
//
// Row types for the brochure catalog.
//
// Context
// -------
// Company and SiteConfig are per-site singletons.  Service, Project, Client,
// and TeamMember form a catalog shared by every site.  Nullable columns map
// to pointer fields so sqlx can scan NULL without sql.Null* wrappers leaking
// into templates.
//
// Notes
// -----
//   - `sort_order` is unsigned in the schema; Go mirrors it with uint.
//   - Only rows with Active == true are ever returned by the public queries.
package content

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

//
// Per-site singletons
//

// Company is the public profile of one site.
type Company struct {
	ID             uint64    `db:"id"              json:"id"`
	SiteID         uint64    `db:"site_id"         json:"site_id"         validate:"required"`
	Name           string    `db:"name"            json:"name"            validate:"required,max=200"`
	Slogan         string    `db:"slogan"          json:"slogan"          validate:"max=300"`
	Description    string    `db:"description"     json:"description"`
	Mission        string    `db:"mission"         json:"mission"`
	Vision         string    `db:"vision"          json:"vision"`
	Values         string    `db:"core_values"     json:"values"`
	Address        string    `db:"address"         json:"address"`
	Phone          string    `db:"phone"           json:"phone"           validate:"max=20"`
	PrimaryEmail   string    `db:"primary_email"   json:"primary_email"   validate:"required,email"`
	SecondaryEmail *string   `db:"secondary_email" json:"secondary_email" validate:"omitempty,email"`
	MainImage      *string   `db:"main_image"      json:"main_image"`
	HeroImage      *string   `db:"hero_image"      json:"hero_image"`
	Active         bool      `db:"active"          json:"active"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}

// SiteConfig carries footer and head settings for one site.
type SiteConfig struct {
	ID              uint64      `db:"id"               json:"id"`
	SiteID          uint64      `db:"site_id"          json:"site_id"       validate:"required"`
	Title           string      `db:"title"            json:"title"         validate:"required,max=200"`
	MetaDescription string      `db:"meta_description" json:"meta_description"`
	Keywords        string      `db:"keywords"         json:"keywords"      validate:"max=500"`
	FooterLogo      *string     `db:"footer_logo"      json:"footer_logo"`
	BackgroundImage *string     `db:"background_image" json:"background_image"`
	FooterPhone     string      `db:"footer_phone"     json:"footer_phone"  validate:"max=20"`
	FooterEmail     string      `db:"footer_email"     json:"footer_email"  validate:"omitempty,email"`
	FooterAddress   string      `db:"footer_address"   json:"footer_address"`
	SocialLinks     SocialLinks `db:"social_links"     json:"social_links"  validate:"dive,keys,required,endkeys,url"`
	Active          bool        `db:"active"           json:"active"`
}

// SocialLinks maps a network name to its profile URL.  Stored as JSON.
type SocialLinks map[string]string

// Value implements driver.Valuer.
func (s SocialLinks) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *SocialLinks) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("social_links: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(raw, s)
}

//
// Shared catalog
//

// Service is one offering shown on the services page.
type Service struct {
	ID          uint64    `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description"`
	Icon        *string   `db:"icon"        json:"icon"`
	Image       *string   `db:"image"       json:"image"`
	SortOrder   uint      `db:"sort_order"  json:"sort_order"`
	Active      bool      `db:"active"      json:"active"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}

// Project is a portfolio entry.
type Project struct {
	ID          uint64     `db:"id"          json:"id"`
	Name        string     `db:"name"        json:"name"`
	Description string     `db:"description" json:"description"`
	Client      string     `db:"client"      json:"client"`
	ClientID    *uint64    `db:"client_id"   json:"client_id"`
	ClientName  *string    `db:"client_name" json:"-"`
	Scope       string     `db:"scope"       json:"scope"`
	Image       *string    `db:"image"       json:"image"`
	StartDate   *time.Time `db:"start_date"  json:"start_date"`
	EndDate     *time.Time `db:"end_date"    json:"end_date"`
	SortOrder   uint       `db:"sort_order"  json:"sort_order"`
	Featured    bool       `db:"featured"    json:"featured"`
	Active      bool       `db:"active"      json:"active"`
	CreatedAt   time.Time  `db:"created_at"  json:"created_at"`
}

// DisplayedClient is the related client's name when the relation is set,
// otherwise the free-text label.
func (p Project) DisplayedClient() string {
	if p.ClientID != nil && p.ClientName != nil {
		return *p.ClientName
	}
	return p.Client
}

// ClientType partitions clients on the clients page.
type ClientType string

const (
	ClientDirect ClientType = "direct"
	ClientFinal  ClientType = "final"
)

// ErrClientType is returned for any type other than direct or final.
var ErrClientType = errors.New("client type must be direct or final")

// Valid reports whether t is one of the two known types.
func (t ClientType) Valid() bool { return t == ClientDirect || t == ClientFinal }

// Client is a customer shown on the clients page and homepage strip.
type Client struct {
	ID            uint64     `db:"id"          json:"id"`
	Name          string     `db:"name"        json:"name"`
	Logo          *string    `db:"logo"        json:"logo"`
	Description   string     `db:"description" json:"description"`
	Type          ClientType `db:"type"        json:"type"`
	Featured      bool       `db:"featured"    json:"featured"`
	SortOrder     uint       `db:"sort_order"  json:"sort_order"`
	HighlightsRaw *string    `db:"highlights"  json:"-"`
	Active        bool       `db:"active"      json:"active"`
	CreatedAt     time.Time  `db:"created_at"  json:"created_at"`
}

// Highlights splits the stored text into trimmed, non-empty lines.
func (c Client) Highlights() []string {
	if c.HighlightsRaw == nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(*c.HighlightsRaw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// TeamMember is one person on the team page.
type TeamMember struct {
	ID          uint64    `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Role        string    `db:"role"        json:"role"`
	Email       *string   `db:"email"       json:"email"`
	Phone       *string   `db:"phone"       json:"phone"`
	Photo       *string   `db:"photo"       json:"photo"`
	Description *string   `db:"description" json:"description"`
	Partner     bool      `db:"partner"     json:"partner"`
	SortOrder   uint      `db:"sort_order"  json:"sort_order"`
	Active      bool      `db:"active"      json:"active"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}
