// Package postgres persists scan outcomes to PostgreSQL through the pgx
// database/sql driver and reads them back for reports.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

const (
	pingTimeout     = 5 * time.Second
	maxOpenConns    = 4
	maxIdleConns    = 2
	connMaxLifetime = 30 * time.Minute
)

// DB is the subset of *sql.DB the stores use.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS drift_scans (
	scan_id    TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS drift_outcomes (
	scan_id                  TEXT NOT NULL REFERENCES drift_scans (scan_id) ON DELETE CASCADE,
	seq                      INTEGER NOT NULL,
	source_id                TEXT NOT NULL,
	scm_identifier           TEXT,
	pipeline_status          TEXT NOT NULL,
	environment              TEXT,
	status                   TEXT,
	failure_kind             TEXT,
	drift_simple_seconds     DOUBLE PRECISION,
	drift_merge_base_seconds DOUBLE PRECISION,
	payload                  JSONB NOT NULL,
	PRIMARY KEY (scan_id, seq)
);
CREATE INDEX IF NOT EXISTS drift_scans_started_at_idx ON drift_scans (started_at DESC);
`

// Open connects to url, checks the connection and creates the schema.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, errors.New("postgres url is required")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func nullIfEmpty(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullSeconds(value *time.Duration) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: value.Seconds(), Valid: true}
}
