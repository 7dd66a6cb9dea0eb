package ordering

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMock(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewService(sqlx.NewDb(mockDB, "mysql")), mock
}

func TestReorderLastWriteWins(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM service WHERE id IN (?, ?)")).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	upd := regexp.QuoteMeta("UPDATE service SET sort_order = ? WHERE id = ?")
	mock.ExpectExec(upd).WithArgs(5, uint64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upd).WithArgs(1, uint64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	items := []Item{{ID: 1, Position: 0}, {ID: 2, Position: 1}, {ID: 1, Position: 5}}
	n, err := svc.Reorder(context.Background(), KindServices, items, Scope{})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if n != 2 {
		t.Fatalf("updated = %d, want 2 distinct ids", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReorderSkipsMissingIDs(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM team_member").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec("UPDATE team_member").WithArgs(0, uint64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := svc.Reorder(context.Background(), KindTeam,
		[]Item{{ID: 4, Position: 0}, {ID: 999, Position: 1}}, Scope{})
	if err != nil || n != 1 {
		t.Fatalf("got %d, %v", n, err)
	}
}

func TestReorderScopedSelect(t *testing.T) {
	svc, mock := newMock(t)
	yes := true
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM client WHERE id IN (?) AND featured = ? AND type = ?")).
		WithArgs(uint64(3), true, "final").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	n, err := svc.Reorder(context.Background(), KindClients,
		[]Item{{ID: 3, Position: 2}}, Scope{Featured: &yes, Type: "final"})
	if err != nil || n != 0 {
		t.Fatalf("got %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReorderRollsBackOnError(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM project").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectExec("UPDATE project").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE project").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := svc.Reorder(context.Background(), KindProjects,
		[]Item{{ID: 1, Position: 0}, {ID: 2, Position: 1}}, Scope{})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReorderRejectsBeforeTouchingStorage(t *testing.T) {
	svc, mock := newMock(t)
	yes := true
	cases := []struct {
		kind  Kind
		items []Item
		scope Scope
		want  error
	}{
		{"widgets", []Item{{ID: 1}}, Scope{}, ErrUnknownKind},
		{KindServices, []Item{{ID: 1, Position: -1}}, Scope{}, ErrBadPayload},
		{KindServices, []Item{{ID: 1}}, Scope{Featured: &yes}, ErrScope},
		{KindProjects, []Item{{ID: 1}}, Scope{Partner: &yes}, ErrScope},
		{KindClients, []Item{{ID: 1}}, Scope{Type: "partner"}, ErrScope},
	}
	for _, tc := range cases {
		if _, err := svc.Reorder(context.Background(), tc.kind, tc.items, tc.scope); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.kind, err, tc.want)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReorderEmptyIsNoop(t *testing.T) {
	svc, mock := newMock(t)
	n, err := svc.Reorder(context.Background(), KindServices, nil, Scope{})
	if err != nil || n != 0 {
		t.Fatalf("got %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope(url.Values{"active": {"true"}, "partner": {"0"}, "payload": {"[]"}})
	if err != nil {
		t.Fatal(err)
	}
	if s.Active == nil || !*s.Active || s.Partner == nil || *s.Partner || s.Featured != nil {
		t.Fatalf("scope = %+v", s)
	}
	if _, err := ParseScope(url.Values{"featured": {"maybe"}}); !errors.Is(err, ErrScope) {
		t.Fatalf("err = %v", err)
	}
}
