// internal/ordering/service.go
//
// Manual ordering for admin lists.
//
// Context
// -------
// Admins drag rows into place; the browser posts the new positions as a
// list of {id, position}.  One Service handles every orderable kind so the
// rules below hold everywhere:
//
//   - Duplicate ids: the last position wins.  The count is per distinct id.
//   - Ids that are missing or outside the requested scope are skipped and
//     not counted.
//   - The whole batch runs in one transaction: one scoped SELECT of the
//     candidate ids, then one UPDATE per id found.  Any storage error rolls
//     everything back.
//
// Notes
// -----
//   - Table and column names come from the fixed kinds table, never from
//     request input.
package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Errors returned to the HTTP edge.
var (
	ErrUnknownKind = errors.New("unknown orderable kind")
	ErrBadPayload  = errors.New("malformed reorder payload")
	ErrScope       = errors.New("invalid reorder scope")
)

// Kind names an orderable list.
type Kind string

const (
	KindServices Kind = "services"
	KindProjects Kind = "projects"
	KindClients  Kind = "clients"
	KindTeam     Kind = "team"
)

type kindInfo struct {
	table    string
	featured bool
	partner  bool
	typed    bool
}

var kinds = map[Kind]kindInfo{
	KindServices: {table: "service"},
	KindProjects: {table: "project", featured: true},
	KindClients:  {table: "client", featured: true, typed: true},
	KindTeam:     {table: "team_member", partner: true},
}

// ParseKind validates s against the known kinds.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Item is one requested position.
type Item struct {
	ID       uint64 `json:"id"`
	Position int    `json:"position"`
}

// Service applies reorders.  Safe for concurrent use; concurrent batches on
// the same rows resolve last-write-wins at the storage layer.
type Service struct {
	db *sqlx.DB
}

// NewService wraps db.
func NewService(db *sqlx.DB) *Service { return &Service{db: db} }

// Reorder applies items to kind within scope and returns how many distinct
// rows were repositioned.
func (s *Service) Reorder(ctx context.Context, kind Kind, items []Item, scope Scope) (int, error) {
	info, ok := kinds[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := checkItems(items); err != nil {
		return 0, err
	}
	if err := scope.validate(kind, info); err != nil {
		return 0, err
	}

	ids, pos := dedupe(items)
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	conds, args := scope.where()
	q := `SELECT id FROM ` + info.table + ` WHERE id IN (?)` + conds
	q, inArgs, err := sqlx.In(q, append([]any{ids}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("build reorder select: %w", err)
	}
	var found []uint64
	if err := tx.SelectContext(ctx, &found, tx.Rebind(q), inArgs...); err != nil {
		return 0, fmt.Errorf("select %s ids: %w", info.table, err)
	}

	upd := tx.Rebind(`UPDATE ` + info.table + ` SET sort_order = ? WHERE id = ?`)
	for _, id := range found {
		if _, err := tx.ExecContext(ctx, upd, pos[id], id); err != nil {
			return 0, fmt.Errorf("update %s %d: %w", info.table, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reorder: %w", err)
	}
	zap.S().Debugw("reorder applied", "kind", kind, "requested", len(items), "updated", len(found))
	return len(found), nil
}

func checkItems(items []Item) error {
	for i, it := range items {
		if it.Position < 0 {
			return fmt.Errorf("%w: item %d has negative position", ErrBadPayload, i)
		}
	}
	return nil
}

// dedupe keeps the last position per id and returns ids in first-seen
// order.
func dedupe(items []Item) ([]uint64, map[uint64]int) {
	pos := make(map[uint64]int, len(items))
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		if _, seen := pos[it.ID]; !seen {
			ids = append(ids, it.ID)
		}
		pos[it.ID] = it.Position
	}
	return ids, pos
}
