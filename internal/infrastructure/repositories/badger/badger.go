// Package badger persists scan outcomes in an embedded BadgerDB.
//
// Key layout:
//
//	scan/<started_at>/<scan_id>   -> entities.Scan
//	outcome/<scan_id>/<seq>       -> entities.Outcome
//
// started_at is a fixed-width UTC timestamp, so the last scan key in
// iteration order is the most recent scan.
package badger

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	logger "github.com/sirupsen/logrus"
)

// Config holds configuration for a BadgerDB instance.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps the database off disk. Used by tests.
	InMemory bool
}

// badgerLogger routes BadgerDB logs to logrus. Info lines are demoted to
// debug since badger reports every compaction at info.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any)   { logger.Errorf(format, args...) }
func (badgerLogger) Warningf(format string, args ...any) { logger.Warnf(format, args...) }
func (badgerLogger) Infof(format string, args ...any)    { logger.Debugf(format, args...) }
func (badgerLogger) Debugf(format string, args ...any)   { logger.Tracef(format, args...) }

// Open opens the database described by cfg, creating its directory.
func Open(cfg Config) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}
