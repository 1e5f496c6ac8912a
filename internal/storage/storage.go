// Package storage mirrors the loaded dataset into SQLite so it can be
// explored with raw SQL.
package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory mirror.
const MemoryPath = ":memory:"

// DB is an observation mirror backed by one SQLite database.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the mirror at path and applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	if path == MemoryPath {
		dsn = "file::memory:?_foreign_keys=on"
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mirror %s: %w", path, err)
	}
	// Each connection to :memory: sees its own database.
	if path == MemoryPath {
		conn.SetMaxOpenConns(1)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema to %s: %w", path, err)
	}
	return &DB{conn: conn, path: path}, nil
}

// Path returns the path the mirror was opened with.
func (db *DB) Path() string { return db.path }

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
