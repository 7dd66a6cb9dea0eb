package site

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
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

func TestByDomainFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(domain) = LOWER(?)")).
		WithArgs("tekon-rl.cl").
		WillReturnRows(sqlmock.NewRows([]string{"id", "domain", "name"}).
			AddRow(1, "tekon-rl.cl", "Tekon"))

	s, err := repo.ByDomain(context.Background(), "tekon-rl.cl")
	if err != nil {
		t.Fatalf("ByDomain: %v", err)
	}
	if s == nil || s.ID != 1 {
		t.Fatalf("got %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestByDomainMissReturnsNil(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM site").
		WillReturnRows(sqlmock.NewRows([]string{"id", "domain", "name"}))

	s, err := repo.ByDomain(context.Background(), "nope.example")
	if err != nil || s != nil {
		t.Fatalf("got %+v, %v", s, err)
	}
}

func TestLookupErrorPropagates(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM site").WillReturnError(errors.New("conn reset"))

	if _, err := repo.First(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
