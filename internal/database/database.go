// Package database centralises sqlx connection helpers and the embedded
// schema.  The driver is go-sql-driver/mysql, which also serves MariaDB.
//
// Public entry points:
//
//	BuildDSN(dsn, password)          – merge a secret into a DSN template.
//	Open(ctx, dsn)                   – conservative pool sizes.
//	OpenWithOptions(ctx, dsn, opts)  – fine-grained control plus retries.
//	Migrate(ctx, db)                 – apply schema.sql idempotently.
//
// Both open helpers Ping the database before returning so callers can fail
// fast during bootstrap.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Options tunes one pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// PingRetries is how many extra attempts are made when the first Ping
	// fails.  Containers often start the app before MySQL accepts sockets.
	PingRetries  int
	RetryBackoff time.Duration
}

// DefaultOptions are used by Open.
var DefaultOptions = Options{
	MaxOpenConns:    15,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
	PingRetries:     3,
	RetryBackoff:    2 * time.Second,
}

// BuildDSN parses a DSN template, injects password when non-empty, and
// forces parseTime so DATETIME columns scan into time.Time.
func BuildDSN(dsn, password string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	if password != "" {
		cfg.Passwd = password
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// Open returns a *sqlx.DB using DefaultOptions.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, DefaultOptions)
}

// OpenWithOptions opens a pool and pings it, retrying with a fixed backoff.
func OpenWithOptions(ctx context.Context, dsn string, o Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)

	if err := ping(ctx, db, o); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ping(ctx context.Context, db *sqlx.DB, o Options) error {
	var err error
	for attempt := 0; attempt <= o.PingRetries; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		zap.S().Warnw("database ping failed", "attempt", attempt+1, "err", err)
		if attempt == o.PingRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.RetryBackoff):
		}
	}
	return fmt.Errorf("database ping: %w", err)
}
