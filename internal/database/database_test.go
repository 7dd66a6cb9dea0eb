package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func TestBuildDSNInjectsPassword(t *testing.T) {
	out, err := BuildDSN("brochure@tcp(db:3306)/brochure", "pw")
	if err != nil {
		t.Fatalf("BuildDSN: %v", err)
	}
	cfg, err := mysql.ParseDSN(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if cfg.Passwd != "pw" || !cfg.ParseTime || cfg.DBName != "brochure" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestBuildDSNKeepsInlinePassword(t *testing.T) {
	out, err := BuildDSN("u:inline@tcp(db:3306)/x", "")
	if err != nil {
		t.Fatal(err)
	}
	cfg, _ := mysql.ParseDSN(out)
	if cfg.Passwd != "inline" {
		t.Fatalf("password = %q", cfg.Passwd)
	}
}

func TestStatementsCoverEveryTable(t *testing.T) {
	stmts := Statements()
	want := []string{"site", "company", "site_config", "service", "client",
		"project", "team_member", "contact_message"}
	if len(stmts) != len(want) {
		t.Fatalf("got %d statements, want %d", len(stmts), len(want))
	}
	for i, tbl := range want {
		if !strings.Contains(stmts[i], "EXISTS "+tbl+" (") {
			t.Errorf("statement %d does not create %s", i+1, tbl)
		}
	}
}

func TestMigrate(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "mysql")

	for range Statements() {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateStopsOnError(t *testing.T) {
	mockDB, mock, _ := sqlmock.New()
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "mysql")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnError(errors.New("denied"))
	if err := Migrate(context.Background(), db); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
