// Package storage persists notes in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB is the notes database
type DB struct {
	conn     *sql.DB
	path     string
	isMemory bool
}

// Config for Open
type Config struct {
	Path        string        // Database file; parent directories are created
	InMemory    bool          // Private in-memory database (tests)
	BusyTimeout time.Duration // Wait on a locked database (default: 5s)
}

// Open opens or creates the database. Migrations are applied separately
// with Migrate.
func Open(cfg Config) (*DB, error) {
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db := &DB{path: cfg.Path, isMemory: cfg.InMemory}

	dsn := cfg.Path
	if cfg.InMemory {
		// A unique name keeps each in-memory database private to its opener
		dsn = fmt.Sprintf("file:notely-%s?mode=memory&cache=shared", uuid.NewString())
		db.path = ""
	} else if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway
	conn.SetMaxOpenConns(1)
	db.conn = conn

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout.Milliseconds()),
	}
	if !cfg.InMemory {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	return db, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Path returns the database file, empty for in-memory databases
func (db *DB) Path() string {
	return db.path
}

// Transaction runs fn in a transaction, rolling back if it fails
func (db *DB) Transaction(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
