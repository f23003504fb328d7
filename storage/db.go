package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrEmptyText       = errors.New("insight text is empty")
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB is the single SQLite connection shared by the project and insight stores.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: statements are serialized and pragmas stick.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	db := &DB{conn: conn, path: path}
	if err := db.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func (db *DB) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL,
		root_path      TEXT NOT NULL UNIQUE,
		last_indexed   TEXT NOT NULL,
		structure_json TEXT
	);

	CREATE TABLE IF NOT EXISTS insights (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		text              TEXT NOT NULL,
		embedding         BLOB NOT NULL,
		source_project_id INTEGER REFERENCES projects(id) ON DELETE SET NULL,
		created_at        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_insights_created ON insights(created_at DESC);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func (db *DB) Path() string {
	return db.path
}

func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
