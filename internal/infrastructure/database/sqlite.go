// Package database owns the embedded SQLite connection and the core schema.
package database

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Connection wraps the shared *sql.DB.
// Note: sql.DB is already thread-safe and manages its own connection pool;
// it is not wrapped with additional locking here. Mutation serialization
// lives in the service layer and in SQLite's own write locking.
type Connection struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and initializes the schema.
// WAL keeps readers non-blocking while a writer holds the database; the
// busy timeout makes concurrent writers queue instead of failing.
func Open(path string) (*Connection, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db}, nil
}

// OpenFromEnv opens the database at DB_PATH (default "igorforce.db").
func OpenFromEnv() (*Connection, error) {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "igorforce.db"
	}
	return Open(path)
}

// DB returns the underlying *sql.DB
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close closes the connection
func (c *Connection) Close() error {
	return c.db.Close()
}
