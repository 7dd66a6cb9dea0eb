package content

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/brochure/internal/site"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "mysql")), mock
}

var clientColumns = []string{"id", "name", "logo", "description", "type", "featured",
	"sort_order", "highlights", "active", "created_at"}

func strp(s string) *string { return &s }

func TestServicesOrderingAndLimit(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM service WHERE active = 1 ORDER BY sort_order, name, id LIMIT ?")).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "icon", "image", "sort_order", "active", "created_at"}).
			AddRow(3, "Audit", "d", nil, nil, 0, true, now).
			AddRow(1, "Build", "d", "servicios/icons/b.svg", nil, 1, true, now))

	out, err := repo.Services(context.Background(), ServiceQuery{Limit: 6})
	if err != nil {
		t.Fatalf("Services: %v", err)
	}
	if len(out) != 2 || out[0].ID != 3 || out[1].Icon == nil {
		t.Fatalf("unexpected rows: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestServicesNoLimitOmitsClause(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`ORDER BY sort_order, name, id$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.Services(context.Background(), ServiceQuery{}); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProjectsFeaturedJoinsClient(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.active = 1 AND p.featured = 1 ORDER BY p.sort_order, p.created_at DESC, p.id DESC LIMIT ?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "client", "client_id", "client_name",
			"scope", "image", "start_date", "end_date", "sort_order", "featured", "active", "created_at"}).
			AddRow(5, "Plant", "d", "Free text", 9, "Acme", "", nil, nil, nil, 0, true, true, now).
			AddRow(4, "Road", "d", "Gov", nil, nil, "", nil, nil, nil, 0, true, true, now))

	out, err := repo.Projects(context.Background(), ProjectQuery{FeaturedOnly: true, Limit: 3})
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if got := out[0].DisplayedClient(); got != "Acme" {
		t.Errorf("related client name not preferred: %q", got)
	}
	if got := out[1].DisplayedClient(); got != "Gov" {
		t.Errorf("free text label lost: %q", got)
	}
}

func TestClientsByType(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE active = 1 AND type = ? ORDER BY sort_order, name, id")).
		WithArgs("final").
		WillReturnRows(sqlmock.NewRows(clientColumns).
			AddRow(2, "Beta", nil, "", "final", false, 0, "one\n\n  two  \n", true, time.Now()))

	out, err := repo.Clients(context.Background(), ClientQuery{Type: ClientFinal})
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	hl := out[0].Highlights()
	if len(hl) != 2 || hl[0] != "one" || hl[1] != "two" {
		t.Fatalf("highlights = %q", hl)
	}
}

func TestClientsRejectsUnknownType(t *testing.T) {
	repo, _ := newMock(t)
	_, err := repo.Clients(context.Background(), ClientQuery{Type: "partner"})
	if !errors.Is(err, ErrInvalid) || !errors.Is(err, ErrClientType) {
		t.Fatalf("err = %v", err)
	}
}

func TestHomepageClientsFeaturedFirst(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("featured = 1 AND logo IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows(clientColumns).
			AddRow(1, "A", "clientes/a.png", "", "direct", true, 0, nil, true, time.Now()))

	out, err := repo.HomepageClients(context.Background())
	if err != nil || len(out) != 1 {
		t.Fatalf("got %v, %v", out, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHomepageClientsFallsBackToAnyWithLogo(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("featured = 1 AND logo IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows(clientColumns))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE active = 1 AND logo IS NOT NULL AND logo <> ''")).
		WillReturnRows(sqlmock.NewRows(clientColumns).
			AddRow(7, "B", "clientes/b.png", "", "direct", false, 0, nil, true, time.Now()).
			AddRow(8, "C", "clientes/c.png", "", "final", false, 1, nil, true, time.Now()))

	out, err := repo.HomepageClients(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != 7 {
		t.Fatalf("fallback rows = %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTeamPartners(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE active = 1 AND partner = 1 ORDER BY sort_order, name, id LIMIT ?")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role", "partner"}).
			AddRow(1, "Ana", "CEO", true))

	out, err := repo.Team(context.Background(), TeamQuery{PartnersOnly: true, Limit: 4})
	if err != nil || len(out) != 1 || !out[0].Partner {
		t.Fatalf("got %+v, %v", out, err)
	}
}

func TestCompanyNilSite(t *testing.T) {
	repo, mock := newMock(t)
	c, err := repo.Company(context.Background(), nil)
	if c != nil || err != nil {
		t.Fatalf("got %+v, %v", c, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("nil site must not query:", err)
	}
}

func TestCompanyScopedBySite(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE site_id = ? AND active = 1")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "name", "primary_email"}).
			AddRow(11, 2, "Tekon", "info@tekon.example"))

	c, err := repo.Company(context.Background(), &site.Site{ID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.SiteID != 2 || c.Name != "Tekon" {
		t.Fatalf("company = %+v", c)
	}
}

func TestSiteConfigMissingIsNil(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM site_config").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, err := repo.SiteConfig(context.Background(), &site.Site{ID: 3})
	if c != nil || err != nil {
		t.Fatalf("got %+v, %v", c, err)
	}
}

func TestSiteConfigDecodesSocialLinks(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM site_config").
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "title", "social_links", "active"}).
			AddRow(1, 3, "T", []byte(`{"linkedin":"https://linkedin.com/company/x"}`), true))

	c, err := repo.SiteConfig(context.Background(), &site.Site{ID: 3})
	if err != nil {
		t.Fatal(err)
	}
	if c.SocialLinks["linkedin"] != "https://linkedin.com/company/x" {
		t.Fatalf("social links = %v", c.SocialLinks)
	}
}

func validCompany() *Company {
	return &Company{SiteID: 1, Name: "Tekon", PrimaryEmail: "info@tekon.example", Active: true}
}

func TestCreateCompanyPreCheckRejectsSecond(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM company WHERE site_id = ?")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.CreateCompany(context.Background(), validCompany())
	if !errors.Is(err, ErrSingletonViolation) {
		t.Fatalf("err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateCompanyDuplicateKeyRace(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO company").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := repo.CreateCompany(context.Background(), validCompany())
	if !errors.Is(err, ErrSingletonViolation) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateCompanySuccess(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO company").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	id, err := repo.CreateCompany(context.Background(), validCompany())
	if err != nil || id != 42 {
		t.Fatalf("got %d, %v", id, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateCompanyValidation(t *testing.T) {
	repo, mock := newMock(t)
	c := validCompany()
	c.PrimaryEmail = "not-an-email"
	if _, err := repo.CreateCompany(context.Background(), c); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v", err)
	}

	c = validCompany()
	c.MainImage = strp("../etc/passwd")
	if _, err := repo.CreateCompany(context.Background(), c); !errors.Is(err, ErrInvalid) {
		t.Fatalf("image path accepted: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("invalid input reached the database:", err)
	}
}

func TestCreateSiteConfigRejectsBadSocialURL(t *testing.T) {
	repo, _ := newMock(t)
	cfg := &SiteConfig{SiteID: 1, Title: "T", SocialLinks: SocialLinks{"x": "not a url"}}
	if _, err := repo.CreateSiteConfig(context.Background(), cfg); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestAvailableSitesForSiteConfig(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN site_config t ON t.site_id = s.id WHERE t.id IS NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "domain", "name"}).AddRow(4, "d.example", "D"))

	out, err := repo.AvailableSitesForSiteConfig(context.Background())
	if err != nil || len(out) != 1 || out[0].ID != 4 {
		t.Fatalf("got %+v, %v", out, err)
	}
}

func TestMediaURL(t *testing.T) {
	if got := MediaURL("/media/", strp("clientes/a.png")); got != "/media/clientes/a.png" {
		t.Errorf("MediaURL = %q", got)
	}
	if got := MediaURL("/media", nil); got != "" {
		t.Errorf("nil path = %q", got)
	}
}
