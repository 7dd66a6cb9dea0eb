package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// Statements returns schema.sql split into individual statements.  The
// file holds no semicolons inside literals, so a plain split is enough.
func Statements() []string {
	var out []string
	for _, s := range strings.Split(schemaSQL, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate applies every CREATE TABLE IF NOT EXISTS statement in order.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts := Statements()
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	zap.S().Infow("schema applied", "statements", len(stmts))
	return nil
}
