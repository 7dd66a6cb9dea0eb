package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by Mark for an unknown message id.
var ErrNotFound = errors.New("contact message not found")

// Message mirrors one row in contact_message.  The visitor-supplied fields
// are write-once; only Read and Replied change after insert.
type Message struct {
	ID          uint64    `db:"id"           json:"id"`
	SiteID      *uint64   `db:"site_id"      json:"site_id"`
	Name        string    `db:"name"         json:"name"`
	Email       string    `db:"email"        json:"email"`
	Phone       string    `db:"phone"        json:"phone"`
	Company     string    `db:"company"      json:"company"`
	Subject     string    `db:"subject"      json:"subject"`
	Message     string    `db:"message"      json:"message"`
	RemoteIP    string    `db:"remote_ip"    json:"remote_ip"`
	UserAgent   string    `db:"user_agent"   json:"user_agent"`
	Country     string    `db:"country"      json:"country"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	Read        bool      `db:"is_read"      json:"read"`
	Replied     bool      `db:"is_replied"   json:"replied"`
}

// ListQuery narrows List.
type ListQuery struct {
	SiteID     uint64
	UnreadOnly bool
	Limit      int
	Offset     int
}

// Flags is a partial update of the admin-owned booleans.  Nil leaves the
// column unchanged.
type Flags struct {
	Read    *bool `json:"read"`
	Replied *bool `json:"replied"`
}

// SQLStore is the MySQL-backed Store.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps db.
func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

// Insert stores m with both flags cleared.
func (s *SQLStore) Insert(ctx context.Context, m *Message) (uint64, error) {
	const q = `INSERT INTO contact_message
	    (site_id, name, email, phone, company, subject, message,
	     remote_ip, user_agent, country, submitted_at, is_read, is_replied)
	    VALUES (:site_id, :name, :email, :phone, :company, :subject, :message,
	     :remote_ip, :user_agent, :country, :submitted_at, 0, 0)`
	res, err := s.db.NamedExecContext(ctx, q, m)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	m.Read, m.Replied = false, false
	return uint64(id), nil
}

// List returns messages newest first.
func (s *SQLStore) List(ctx context.Context, q ListQuery) ([]Message, error) {
	var (
		conds []string
		args  []any
	)
	if q.SiteID != 0 {
		conds = append(conds, "site_id = ?")
		args = append(args, q.SiteID)
	}
	if q.UnreadOnly {
		conds = append(conds, "is_read = 0")
	}

	stmt := `SELECT id, site_id, name, email, phone, company, subject, message,
	    remote_ip, user_agent, country, submitted_at, is_read, is_replied
	    FROM contact_message`
	if len(conds) > 0 {
		stmt += " WHERE " + strings.Join(conds, " AND ")
	}
	stmt += " ORDER BY submitted_at DESC, id DESC"

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	stmt += " LIMIT ? OFFSET ?"
	args = append(args, limit, max(q.Offset, 0))

	var out []Message
	if err := s.db.SelectContext(ctx, &out, stmt, args...); err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return out, nil
}

// Mark applies f to message id.
func (s *SQLStore) Mark(ctx context.Context, id uint64, f Flags) error {
	var (
		sets []string
		args []any
	)
	if f.Read != nil {
		sets = append(sets, "is_read = ?")
		args = append(args, *f.Read)
	}
	if f.Replied != nil {
		sets = append(sets, "is_replied = ?")
		args = append(args, *f.Replied)
	}
	if len(sets) == 0 {
		return nil
	}

	// An unchanged row reports zero affected rows on MySQL, so existence is
	// checked explicitly.
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM contact_message WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark contact message %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	args = append(args, id)
	q := `UPDATE contact_message SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("mark contact message %d: %w", id, err)
	}
	return nil
}
